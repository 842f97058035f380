package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/output"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// StatusComponent shows who is logged in and when auto-logout happens.
type StatusComponent struct {
	User     *model.User
	Snapshot timer.Snapshot
	Now      time.Time
	Width    int
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(user *model.User, snap timer.Snapshot, now time.Time, width int) *StatusComponent {
	return &StatusComponent{User: user, Snapshot: snap, Now: now, Width: width}
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	title := StyleTitle.Render("tidytodo")
	if sc.User == nil {
		return title
	}

	display := &timer.WarningDisplay{UseColor: true}
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		StyleUser.Render(sc.User.DisplayName()),
		StyleSubtitle.Render(fmt.Sprintf(" (#%d)  ", sc.User.ID)),
		display.RenderStatus(sc.Snapshot, sc.Now),
	)
	return title + "\n" + line + "\n"
}

// TodoListComponent renders the todo list with a cursor.
type TodoListComponent struct {
	Todos   []model.Todo
	Cursor  int
	Width   int
	Loading bool
	Origin  func(id int64) string
}

// View renders the todo list component.
func (tc *TodoListComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Todos"))
	content.WriteString("\n")

	switch {
	case tc.Loading && len(tc.Todos) == 0:
		content.WriteString(StyleMuted.Render("Loading..."))
	case len(tc.Todos) == 0:
		content.WriteString(StyleMuted.Render("No todos yet. Press 'a' to add one."))
	default:
		for i, t := range tc.Todos {
			if i > 0 {
				content.WriteString("\n")
			}
			content.WriteString(tc.renderTodo(i, t))
		}
		done := 0
		for _, t := range tc.Todos {
			if t.Completed {
				done++
			}
		}
		content.WriteString("\n\n")
		content.WriteString(StyleMuted.Render(fmt.Sprintf("%d todos, %d done", len(tc.Todos), done)))
	}

	width := max(tc.Width-4, 20)
	return StyleListBox.Width(width).Render(content.String())
}

func (tc *TodoListComponent) renderTodo(i int, t model.Todo) string {
	pointer := "  "
	if i == tc.Cursor {
		pointer = StyleSelected.Render("> ")
	}

	text := t.Text
	if t.Completed {
		text = StyleDone.Render(text)
	} else if i == tc.Cursor {
		text = StyleSelected.Render(text)
	}

	line := pointer + output.Checkbox(t.Completed) + " " + text
	if tc.Origin != nil && tc.Origin(t.ID) == "local" {
		line += " " + StyleLocal.Render("(local)")
	}
	return line
}

// SettingsComponent renders the timeout selection.
type SettingsComponent struct {
	Allowed []int
	Current int
	Cursor  int
	Width   int
}

// View renders the settings component.
func (sc *SettingsComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Auto-logout after inactivity"))
	content.WriteString("\n")
	for i, m := range sc.Allowed {
		if i > 0 {
			content.WriteString("\n")
		}
		pointer := "  "
		label := fmt.Sprintf("%d minutes", m)
		if i == sc.Cursor {
			pointer = StyleSelected.Render("> ")
			label = StyleSelected.Render(label)
		}
		if m == sc.Current {
			label += StyleSuccess.Render("  (current)")
		}
		content.WriteString(pointer + label)
	}

	width := max(sc.Width-4, 20)
	return StyleListBox.Width(width).Render(content.String())
}

// WarningModal renders the inactivity warning.
func WarningModal(snap timer.Snapshot, warningSeconds int) string {
	display := &timer.WarningDisplay{UseColor: true}
	return StyleModalBox.Render(display.RenderWarning(snap, warningSeconds))
}
