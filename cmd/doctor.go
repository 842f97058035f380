package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/storage"
)

// Doctor command flags.
var (
	doctorFlagFix bool
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local store for problems",
	Long: `Check that every value in the local store can be read and report disk
space. Unreadable values are ignored by tidytodo, which hides the todos they
held; --fix moves them aside so they can be inspected later.

Examples:
  tidytodo doctor
  tidytodo doctor --fix`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFlagFix, "fix", false, "Quarantine unreadable values")
	rootCmd.AddCommand(doctorCmd)
}

// doctorResult is the JSON form of the doctor report.
type doctorResult struct {
	*storage.IntegrityReport
	Path        string `json:"path"`
	Backend     string `json:"backend"`
	Quarantined int    `json:"quarantined,omitempty"`
	DiskWarning string `json:"disk_warning,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := storage.CheckIntegrity(ctx.Store)
	result := doctorResult{
		IntegrityReport: report,
		Path:            ctx.DBPath,
		Backend:         ctx.Config.Storage.Driver,
		DiskWarning:     ctx.DiskSpaceWarning(),
	}

	if doctorFlagFix && len(report.CorruptKeys) > 0 {
		moved, err := storage.Quarantine(ctx.Store, report.CorruptKeys)
		if err != nil {
			return err
		}
		result.Quarantined = moved
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(result)
	}

	cli := ctx.CLIFormatter()
	cli.Title("Local store")
	cli.Printf("  Backend: %s\n", result.Backend)
	if ctx.InMemory {
		cli.Printf("  Path: (in memory)\n")
	} else {
		cli.Printf("  Path: %s\n", result.Path)
	}
	cli.Printf("  Checked values: %d\n", report.CheckedKeys)

	for _, e := range report.Errors {
		cli.Error(e)
	}
	for _, key := range report.CorruptKeys {
		cli.Warning("Unreadable value: " + key)
	}
	if result.DiskWarning != "" {
		cli.Warning(result.DiskWarning)
	}

	switch {
	case report.Healthy:
		cli.Success("No problems found")
	case result.Quarantined > 0:
		cli.Success(fmt.Sprintf("Moved %d unreadable values aside", result.Quarantined))
	case len(report.CorruptKeys) > 0:
		cli.Muted("Run 'tidytodo doctor --fix' to move unreadable values aside.")
	}
	return nil
}
