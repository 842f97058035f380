package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleDone = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(colorMuted)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Checkbox renders the completion marker of a todo.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// PrintTodos prints todos as a table. origin labels each id as local or
// remote.
func (c *CLIFormatter) PrintTodos(todos []model.Todo, origin func(id int64) string) {
	if len(todos) == 0 {
		c.Muted("No todos yet.")
		c.Muted("Use 'tidytodo todo add <text>' to create one.")
		return
	}

	rows := make([]TableRow, len(todos))
	for i, t := range todos {
		text := t.Text
		if t.Completed {
			text = c.render(styleDone, text)
		}
		rows[i] = TableRow{Columns: []string{
			strconv.FormatInt(t.ID, 10),
			Checkbox(t.Completed),
			text,
			origin(t.ID),
		}}
	}
	c.PrintTable([]string{"ID", "DONE", "TODO", "ORIGIN"}, rows)

	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	c.Muted(fmt.Sprintf("%d todos, %d done", len(todos), done))
}

// PrintTodo prints a single todo after a change.
func (c *CLIFormatter) PrintTodo(verb string, t *model.Todo) {
	c.Success(fmt.Sprintf("%s todo %d", verb, t.ID))
	c.Printf("  %s %s\n", Checkbox(t.Completed), t.Text)
}

// PrintListError prints a failed list with a manual retry hint.
func (c *CLIFormatter) PrintListError(err error) {
	c.Error("Could not load todos: " + err.Error())
	if errors.IsRemoteUnavailable(err) {
		c.Muted("Retry by running 'tidytodo todo list' again.")
	}
}

// PrintSession prints the logged-in user and the inactivity timeout.
func (c *CLIFormatter) PrintSession(info SessionInfo) {
	user := info.User
	if user == nil {
		c.Muted("Not logged in.")
		c.Muted("Use 'tidytodo login <username>' or 'tidytodo register <username>'.")
		return
	}

	c.Printf("Logged in as %s (%s)\n", c.render(styleBold, user.DisplayName()), user.Username)
	c.Printf("  User ID: %d\n", user.ID)
	if user.Email != "" {
		c.Printf("  Email: %s\n", user.Email)
	}
	if info.Local {
		c.Printf("  Account: local (todos stay on this machine)\n")
	}
	c.Printf("  Auto-logout: after %d minutes of inactivity\n", info.TimeoutMinutes)
	if !info.LastActivity.IsZero() {
		c.Printf("  Last activity: %s ago, %s left\n",
			FormatDuration(info.Idle()), FormatDuration(info.Remaining()))
	}
}

// PrintTimer prints a timer snapshot.
func (c *CLIFormatter) PrintTimer(snap timer.Snapshot, warningSeconds int) {
	display := &timer.WarningDisplay{Writer: c.Writer, UseColor: c.IsColorEnabled()}
	if snap.State == timer.Warning {
		display.Print(snap, warningSeconds)
		return
	}
	c.Printf("Inactivity timeout: %d minutes\n", snap.TimeoutMinutes)
	c.Printf("  State: %s\n", snap.State)
}

// TableRow is one row of PrintTable output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(col))
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0)) + "  "
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}
