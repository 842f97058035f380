// Package cmd provides the CLI commands for tidytodo.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/output"
	"github.com/manav03panchal/tidytodo/internal/runtime"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// annotationNoStore marks commands that run without opening the local store.
const annotationNoStore = "tidytodo/no-store"

// annotationSession marks commands that count as session activity.
const annotationSession = "tidytodo/session"

// ctx is the shared runtime context.
var ctx *runtime.Context

// clock drives session expiry and the inactivity timer; nil means wall time.
var clock timer.Clock

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tidytodo",
	Short: "A todo list with automatic logout after inactivity",
	Long: `tidytodo manages your todos against a DummyJSON-compatible service,
keeping todos of local accounts on this machine. Sessions end after a
configurable period of inactivity.

Examples:
  tidytodo login emilys
  tidytodo todo add buy milk
  tidytodo todo list
  tidytodo timeout set 15
  tidytodo dashboard`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case flagDebug:
			logging.InitDebug()
		case config.Global.LogLevel != "":
			logging.InitLevel(config.Global.LogLevel)
		}

		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Annotations[annotationNoStore] == "true" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		// Create runtime context
		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug
		opts.Clock = clock

		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		ctx.Formatter.Writer = cmd.OutOrStdout()

		if warning := ctx.DiskSpaceWarning(); warning != "" && !ctx.IsJSON() {
			ctx.CLIFormatter().Warning(warning)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx == nil {
			return nil
		}
		if cmd.Annotations[annotationSession] == "true" {
			ctx.Touch()
		}
		return closeContext()
	},
	Annotations: map[string]string{annotationSession: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show the session
		return runWhoami(cmd, args)
	},
}

func closeContext() error {
	if ctx == nil {
		return nil
	}
	err := ctx.Close()
	ctx = nil
	return err
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Errors are printed before they are returned.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		closeContext()
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	return runtime.ExitCode(err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{annotationNoStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("tidytodo %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// reportedError is an error the command has already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

// printError prints an error with its suggestion.
func printError(err error) {
	var done *reportedError
	if errors.As(err, &done) {
		return
	}
	if ctx != nil && ctx.IsJSON() {
		ctx.JSONFormatter().PrintError(err)
		return
	}
	os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
}
