// Package output provides output formatting for tidytodo.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// Format represents the output format type.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseFormat parses the --format flag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCLI, FormatJSON, FormatPlain:
		return f, nil
	case "":
		return FormatCLI, nil
	}
	return "", &errors.UserError{
		Message:    fmt.Sprintf("unknown output format %q", s),
		Field:      "format",
		Value:      s,
		Suggestion: "Use one of: cli, json, plain.",
	}
}

// ParseColorMode parses the --color flag.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", &errors.UserError{
		Message:    fmt.Sprintf("unknown color mode %q", s),
		Field:      "color",
		Value:      s,
		Suggestion: "Use one of: auto, always, never.",
	}
}

// Formatter handles output formatting.
type Formatter struct {
	Writer    io.Writer
	Format    Format
	ColorMode ColorMode
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// IsColorEnabled returns true if color output is enabled. Plain output is
// never colored.
func (f *Formatter) IsColorEnabled() bool {
	if f.Format == FormatPlain {
		return false
	}
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		// Auto-detect based on terminal
		if w, ok := f.Writer.(*os.File); ok {
			return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
		}
		return false
	}
}

// Print outputs formatted text.
func (f *Formatter) Print(a ...any) {
	fmt.Fprint(f.Writer, a...)
}

// Println outputs formatted text with newline.
func (f *Formatter) Println(a ...any) {
	fmt.Fprintln(f.Writer, a...)
}

// Printf outputs formatted text.
func (f *Formatter) Printf(format string, a ...any) {
	fmt.Fprintf(f.Writer, format, a...)
}

// JSON outputs data as JSON.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// SessionInfo describes the current session for whoami.
type SessionInfo struct {
	User           *model.User
	Local          bool
	TimeoutMinutes int
	// LastActivity is zero when no command has recorded activity yet.
	LastActivity time.Time
	Now          time.Time
}

// Idle returns how long the session has been inactive.
func (s SessionInfo) Idle() time.Duration {
	if s.LastActivity.IsZero() {
		return 0
	}
	return max(s.Now.Sub(s.LastActivity), 0)
}

// Remaining returns the time left before the session is logged out.
func (s SessionInfo) Remaining() time.Duration {
	return max(time.Duration(s.TimeoutMinutes)*time.Minute-s.Idle(), 0)
}
