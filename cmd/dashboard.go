package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard to log in and manage todos.

The session ends after the configured period without key presses or mouse
activity. One minute before that a warning with a countdown is shown.

Keyboard Controls:
  a - Add a todo
  e - Edit the selected todo
  x - Toggle completed
  d - Delete the selected todo
  r - Reload the list
  t - Change the inactivity timeout
  L - Log out
  q - Quit dashboard

In the warning:
  S - Stay logged in
  L - Log out now

Examples:
  tidytodo dashboard
  tidytodo dash
  tidytodo tui`,
	Annotations: sessionAnnotations(),
	RunE:        runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// A session that expired while no client was running is not resumed.
	if _, err := ctx.RequireSession(); err != nil && !errors.IsSessionEnded(err) {
		return err
	}

	stop := ctx.WatchSession()
	defer stop()

	// Configure the dashboard
	config := tui.DashboardConfig{
		Auth:            ctx.Auth,
		Session:         ctx.Session,
		Todos:           ctx.Todos,
		Timer:           ctx.Timer,
		AllowedTimeouts: ctx.Config.Session.AllowedTimeouts,
		WarningSeconds:  ctx.Config.Session.WarningSeconds,
		SetTimeout:      ctx.SetTimeout,
	}

	// Run the TUI dashboard
	return tui.Run(config)
}
