package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smartstudy/companion/internal/contract"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the workload feasibility report for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			user, err := app.Users.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("resolving user %q: %w", email, err)
			}

			report, err := app.Workload.AnalyzePre(ctx, user.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, header(fmt.Sprintf("Workload analysis for %s", user.Email)))
			fmt.Fprintln(out)
			renderMetrics(out, report.Metrics)
			fmt.Fprintln(out)
			renderWarnings(out, report.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "Email of the user to analyze")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func renderMetrics(out io.Writer, m contract.PreAnalysisMetrics) {
	rows := [][]string{
		{"Task hours", fmt.Sprintf("%.1f", m.TotalTaskHours)},
		{"Available hours / week", fmt.Sprintf("%.1f", m.AvailableHours)},
		{"Hours / day", fmt.Sprintf("%.1f", m.HoursPerDay)},
		{"Completion rate", fmt.Sprintf("%.0f%%", m.CompletionRate*100)},
		{"Realistic capacity", fmt.Sprintf("%.1f h", m.RealisticCapacity)},
		{"Weekly goal", fmt.Sprintf("%d h", m.WeeklyGoalHours)},
	}
	renderTable(out, []string{"Metric", "Value"}, rows)
}

func renderWarnings(out io.Writer, warnings []contract.Warning) {
	if len(warnings) == 0 {
		fmt.Fprintln(out, okText("No warnings. The week looks feasible."))
		return
	}
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{severityText(w.Severity), string(w.Type), w.Message})
	}
	renderTable(out, []string{"Severity", "Warning", "Detail"}, rows)
	for _, w := range warnings {
		for _, s := range w.Suggestions {
			fmt.Fprintf(out, "  %s %s\n", dimText("->"), s)
		}
	}
}
