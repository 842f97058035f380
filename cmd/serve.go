package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/remote/demoapi"
)

// Serve command flags.
var (
	serveFlagAddr string
)

// serveDemoCmd represents the serve-demo command.
var serveDemoCmd = &cobra.Command{
	Use:   "serve-demo",
	Short: "Run a local stand-in for the demo service",
	Long: `Serve the demo REST API locally, for development without network access.
Like the public service it accepts writes but never stores them.

Seeded accounts: emilys / emilyspass (id 1), michaelw / michaelwpass (id 2).

Examples:
  tidytodo serve-demo
  TIDYTODO_API_URL=http://127.0.0.1:8088 tidytodo login emilys`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoStore: "true"},
	RunE:        runServeDemo,
}

func init() {
	serveDemoCmd.Flags().StringVar(&serveFlagAddr, "addr", "127.0.0.1:8088", "Listen address")
	rootCmd.AddCommand(serveDemoCmd)
}

func runServeDemo(cmd *cobra.Command, args []string) error {
	host, port, err := net.SplitHostPort(serveFlagAddr)
	if err != nil {
		return &errors.UserError{
			Message:    "invalid listen address",
			Field:      "addr",
			Value:      serveFlagAddr,
			Suggestion: "Use host:port, e.g. 127.0.0.1:8088.",
		}
	}
	if host == "" {
		host = "127.0.0.1"
	}
	url := "http://" + net.JoinHostPort(host, port)

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("demo service listening", logging.KeyURL, url)
	fmt.Fprintf(cmd.OutOrStdout(), "Demo service listening on %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Use it with: export TIDYTODO_API_URL=%s\n", url)

	return demoapi.New(nil, nil).ListenAndServe(sigCtx, serveFlagAddr)
}
