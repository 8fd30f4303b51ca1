package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/smartstudy/companion/internal/contract"
)

func init() {
	// fatih/color already honors NO_COLOR; also disable styling when stdout
	// is not a terminal, so piped output stays plain.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

var (
	hardColor   = color.New(color.FgRed, color.Bold)
	softColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	dimColor    = color.New(color.Faint)
	headerColor = color.New(color.FgCyan, color.Bold)
)

func header(text string) string {
	upper := strings.ToUpper(text)
	return fmt.Sprintf("%s\n%s", headerColor.Sprint(upper), dimColor.Sprint(strings.Repeat("-", len(upper))))
}

func severityText(sev contract.WarningSeverity) string {
	if sev == contract.SeverityHard {
		return hardColor.Sprint("HARD")
	}
	return softColor.Sprint("soft")
}

func okText(text string) string  { return okColor.Sprint(text) }
func dimText(text string) string { return dimColor.Sprint(text) }

func renderTable(out io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}
