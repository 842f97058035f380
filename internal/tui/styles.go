// Package tui provides the terminal user interface for tidytodo.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the TUI.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleUser is used for the logged-in user's name.
	StyleUser = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSelected marks the row under the cursor.
	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	// StyleDone is used for completed todos.
	StyleDone = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(ColorMuted)

	// StyleLocal tags todos kept on this machine.
	StyleLocal = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorSecondary)

	// StyleWarning is used for warning messages.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleError is used for error messages.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	// StyleSuccess is used for success messages.
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleHelp is used for help text at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	// StyleHelpKey is used for keyboard shortcut keys.
	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// StyleHelpDesc is used for keyboard shortcut descriptions.
	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleMuted is used for muted text.
	StyleMuted = StyleSubtitle
)

// Box styles for different sections.
var (
	// StyleListBox frames the todo list.
	StyleListBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)

	// StyleFormBox frames the login and register forms.
	StyleFormBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	// StyleModalBox frames the inactivity warning.
	StyleModalBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorWarning).
			Padding(1, 3)
)

// HelpKey is one entry of the help bar.
type HelpKey struct {
	Key  string
	Desc string
}

// HelpBar renders the help bar at the bottom.
func HelpBar(keys []HelpKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.Key)+" "+StyleHelpDesc.Render(k.Desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
