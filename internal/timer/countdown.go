package timer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// WarningDisplay renders the inactivity warning and timer status.
type WarningDisplay struct {
	Writer   io.Writer
	UseColor bool
}

// NewWarningDisplay creates a new warning display.
func NewWarningDisplay() *WarningDisplay {
	return &WarningDisplay{
		Writer:   os.Stdout,
		UseColor: true,
	}
}

// Styles for the warning display.
var (
	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444")) // Red

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")) // Yellow

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")) // Green

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")) // Gray

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6B7280")) // Gray
)

// FormatDuration formats a duration as MM:SS or HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (wd *WarningDisplay) style(s lipgloss.Style, text string) string {
	if !wd.UseColor {
		return text
	}
	return s.Render(text)
}

// RenderWarning renders the countdown shown while the timer is in Warning.
// warningSeconds is the full length of the warning window.
func (wd *WarningDisplay) RenderWarning(snap Snapshot, warningSeconds int) string {
	var b strings.Builder

	b.WriteString(wd.style(headerStyle, "Are you still there?"))
	b.WriteString("\n\n")

	remaining := time.Duration(snap.SecondsRemaining) * time.Second
	b.WriteString("You will be logged out in ")
	b.WriteString(wd.style(countdownStyle, FormatDuration(remaining)))
	b.WriteString("\n\n")

	progress := 0.0
	if warningSeconds > 0 {
		progress = 1.0 - float64(snap.SecondsRemaining)/float64(warningSeconds)
	}
	b.WriteString(wd.style(progressStyle, renderProgressBar(progress, 30)))
	b.WriteString("\n\n")

	b.WriteString(wd.style(hintStyle, "Press S to stay logged in, L to log out now"))
	return b.String()
}

// RenderStatus renders a one-line summary of the timer state.
func (wd *WarningDisplay) RenderStatus(snap Snapshot, now time.Time) string {
	switch snap.State {
	case Running:
		line := fmt.Sprintf("Auto-logout after %d min of inactivity", snap.TimeoutMinutes)
		if !snap.WarningAt.IsZero() {
			line += fmt.Sprintf(" (warning in %s)", FormatDuration(snap.WarningAt.Sub(now)))
		}
		return wd.style(runningStyle, line)
	case Warning:
		return wd.style(countdownStyle, fmt.Sprintf("Logging out in %ds", snap.SecondsRemaining))
	default:
		return wd.style(hintStyle, "Not logged in")
	}
}

// renderProgressBar creates a progress bar string.
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", bar, int(progress*100))
}

// Print writes the rendered warning to the display's writer.
func (wd *WarningDisplay) Print(snap Snapshot, warningSeconds int) {
	fmt.Fprintln(wd.Writer, wd.RenderWarning(snap, warningSeconds))
}
