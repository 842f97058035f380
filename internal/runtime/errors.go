package runtime

import (
	"github.com/manav03panchal/tidytodo/internal/errors"
)

// Exit codes returned by the tidytodo binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUserError = 2
	ExitNoSession = 3
	ExitRemote    = 4
)

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := errors.GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsSessionEnded(err):
		return ExitNoSession
	case errors.IsRemoteUnavailable(err):
		return ExitRemote
	case errors.Classify(err) == errors.CategoryUser:
		return ExitUserError
	default:
		return ExitFailure
	}
}
