// Package cli wires the scheduler's services into the sscd command tree.
package cli

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/service"
)

// App holds references to the services and infrastructure the CLI commands
// operate on.
type App struct {
	Users     repository.UserRepo
	Schedule  service.ScheduleService
	Workload  service.WorkloadService
	Calendar  service.CalendarService
	Analytics service.AnalyticsService

	// Handler is the HTTP surface served by `sscd serve`.
	Handler http.Handler
	// DefaultAddr is the listen address used when --addr is not given.
	DefaultAddr string
	Logger      *slog.Logger
}

// NewRootCmd creates the top-level "sscd" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sscd",
		Short:         "Study-plan scheduler and calendar service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newAnalyzeCmd(app),
		newTokenCmd(app),
	)

	return root
}
