package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/output"
)

// timeoutCmd represents the timeout command.
var timeoutCmd = &cobra.Command{
	Use:     "timeout",
	Aliases: []string{"idle"},
	Short:   "Show or change the inactivity timeout",
	Long: `Show or change how long a session may stay idle before it is logged out.
A warning with a one minute countdown is shown before the logout.

Allowed values: 5, 10, 15, 30 or 60 minutes.

Examples:
  tidytodo timeout
  tidytodo timeout set 30`,
	RunE: runTimeoutGet,
}

var timeoutGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the inactivity timeout",
	Args:  cobra.NoArgs,
	RunE:  runTimeoutGet,
}

var timeoutSetCmd = &cobra.Command{
	Use:       "set MINUTES",
	Short:     "Change the inactivity timeout",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"5", "10", "15", "30", "60"},
	RunE:      runTimeoutSet,
}

func init() {
	timeoutCmd.AddCommand(timeoutGetCmd)
	timeoutCmd.AddCommand(timeoutSetCmd)
	rootCmd.AddCommand(timeoutCmd)
}

func runTimeoutGet(cmd *cobra.Command, args []string) error {
	snap := ctx.Timer.Snapshot()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewTimerResponse(snap, ctx.Config.Session.WarningSeconds, ctx.Config.Session.AllowedTimeouts))
	}
	ctx.CLIFormatter().PrintTimer(snap, ctx.Config.Session.WarningSeconds)
	return nil
}

func runTimeoutSet(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return &errors.UserError{
			Message: "Timeout must be a whole number of minutes",
			Field:   "minutes",
			Value:   args[0],
			Cause:   errors.ErrInvalidTimeout,
		}
	}
	if err := ctx.SetTimeout(minutes); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return runTimeoutGet(cmd, nil)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Auto-logout set to %d minutes", minutes))
	return nil
}
