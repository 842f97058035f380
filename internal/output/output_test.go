package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_disables_color", func(t *testing.T) {
		f := &Formatter{Format: FormatPlain, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, ColorMode: ColorAuto}
		// Buffer is not a terminal
		assert.False(t, f.IsColorEnabled())
	})
}

func TestFormatterPrint(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Print("hello")
	f.Println(" world")
	f.Printf("%d", 42)
	assert.Equal(t, "hello world\n42", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	require.NoError(t, f.JSON(map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{9*time.Minute + 30*time.Second, "9m 30s"},
		{time.Hour, "1h"},
		{time.Hour + 15*time.Minute, "1h 15m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func newTestCLI() (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewCLIFormatter(&Formatter{Writer: &buf, ColorMode: ColorNever}), &buf
}

func originOf(id int64) string {
	if id > 1000000 {
		return "local"
	}
	return "remote"
}

func TestCLIFormatterMessages(t *testing.T) {
	c, buf := newTestCLI()

	c.Title("Todos")
	c.Success("saved")
	c.Warning("careful")
	c.Error("failed")
	c.Muted("quiet")

	assert.Equal(t, "Todos\n✓ saved\n⚠ careful\n✗ failed\nquiet\n", buf.String())
}

func TestCLIFormatterPrintTodos(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintTodos(nil, originOf)
		assert.Contains(t, buf.String(), "No todos yet.")
	})

	t.Run("mixed_origins", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintTodos([]model.Todo{
			{ID: 1, Text: "remote item", OwnerID: 1},
			{ID: 1700000000000, Text: "local item", Completed: true, OwnerID: 1},
		}, originOf)

		out := buf.String()
		assert.Contains(t, out, "ID")
		assert.Contains(t, out, "[ ]   remote item")
		assert.Contains(t, out, "[x]")
		assert.Contains(t, out, "local item")
		assert.Contains(t, out, "remote")
		assert.Contains(t, out, "local")
		assert.Contains(t, out, "2 todos, 1 done")
	})
}

func TestCLIFormatterPrintTodo(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTodo("Added", &model.Todo{ID: 7, Text: "write tests"})
	assert.Equal(t, "✓ Added todo 7\n  [ ] write tests\n", buf.String())
}

func TestCLIFormatterPrintListError(t *testing.T) {
	t.Run("remote_unavailable_has_retry_hint", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintListError(fmt.Errorf("list todos: %w", errors.ErrRemoteUnavailable))
		assert.Contains(t, buf.String(), "Could not load todos")
		assert.Contains(t, buf.String(), "Retry by running")
	})

	t.Run("other_error_no_hint", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintListError(errors.ErrNotLoggedIn)
		assert.NotContains(t, buf.String(), "Retry")
	})
}

func TestCLIFormatterPrintSession(t *testing.T) {
	t.Run("logged_out", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintSession(SessionInfo{TimeoutMinutes: 10})
		assert.Contains(t, buf.String(), "Not logged in.")
	})

	t.Run("logged_in", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintSession(SessionInfo{
			User:           &model.User{ID: 1, Username: "emilys", FirstName: "Emily", LastName: "Johnson", Token: "secret"},
			TimeoutMinutes: 15,
		})

		out := buf.String()
		assert.Contains(t, out, "Logged in as Emily Johnson (emilys)")
		assert.Contains(t, out, "after 15 minutes")
		assert.NotContains(t, out, "secret")
		assert.NotContains(t, out, "Last activity")
		assert.NotContains(t, out, "Account: local")
	})

	t.Run("local_account_with_activity", func(t *testing.T) {
		c, buf := newTestCLI()
		now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
		c.PrintSession(SessionInfo{
			User:           &model.User{ID: 1700000000000, Username: "sam"},
			Local:          true,
			TimeoutMinutes: 10,
			LastActivity:   now.Add(-2*time.Minute - 5*time.Second),
			Now:            now,
		})

		out := buf.String()
		assert.Contains(t, out, "Account: local")
		assert.Contains(t, out, "Last activity: 2m 5s ago, 7m 55s left")
	})
}

func TestCLIFormatterPrintTimer(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintTimer(timer.Snapshot{State: timer.Running, TimeoutMinutes: 30}, 60)
		assert.Contains(t, buf.String(), "Inactivity timeout: 30 minutes")
		assert.Contains(t, buf.String(), "running")
	})

	t.Run("warning", func(t *testing.T) {
		c, buf := newTestCLI()
		c.PrintTimer(timer.Snapshot{State: timer.Warning, SecondsRemaining: 42, TimeoutMinutes: 10}, 60)
		assert.Contains(t, buf.String(), "00:42")
	})
}

func TestCLIFormatterPrintTable(t *testing.T) {
	c, buf := newTestCLI()

	c.PrintTable([]string{"A", "LONG"}, []TableRow{
		{Columns: []string{"wide value", "x"}},
		{Columns: []string{"y", "z", "ignored"}},
	})

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "A           LONG", string(lines[0]))
	assert.Equal(t, "wide value  x", string(lines[2]))
	assert.Equal(t, "y           z", string(lines[3]))
}

func TestCLIFormatterPrintTableEmpty(t *testing.T) {
	c, buf := newTestCLI()
	c.PrintTable([]string{"A"}, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestNewTodosResponse(t *testing.T) {
	resp := NewTodosResponse([]model.Todo{
		{ID: 1, Text: "a", OwnerID: 1},
		{ID: 1700000000000, Text: "b", Completed: true, OwnerID: 1},
	}, originOf)

	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.CompletedCount)
	assert.Equal(t, "remote", resp.Todos[0].Origin)
	assert.Equal(t, "local", resp.Todos[1].Origin)
}

func TestJSONFormatterPrintTodos(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintTodos([]model.Todo{{ID: 3, Text: "ship", OwnerID: 2}}, originOf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	todos := decoded["todos"].([]any)
	require.Len(t, todos, 1)
	first := todos[0].(map[string]any)
	assert.Equal(t, "ship", first["todo"])
	assert.Equal(t, float64(2), first["user_id"])
}

func TestJSONFormatterPrintDeleted(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintDeleted(5))
	assert.JSONEq(t, `{"status":"deleted","id":5}`, buf.String())
}

func TestNewSessionResponse(t *testing.T) {
	t.Run("logged_out", func(t *testing.T) {
		resp := NewSessionResponse(SessionInfo{TimeoutMinutes: 10})
		assert.Equal(t, "logged_out", resp.Status)
		assert.Nil(t, resp.User)
	})

	t.Run("never_includes_token", func(t *testing.T) {
		seen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		resp := NewSessionResponse(SessionInfo{
			User:           &model.User{ID: 1700000000000, Username: "me", Token: "mock_token_x"},
			Local:          true,
			TimeoutMinutes: 5,
			LastActivity:   seen,
			Now:            seen.Add(time.Minute),
		})

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "mock_token_x")
		assert.Equal(t, "logged_in", resp.Status)
		assert.True(t, resp.User.Local)
		assert.Equal(t, "2026-01-02T03:04:05Z", resp.LastActivity)
		assert.Equal(t, 240, resp.RemainingSeconds)
	})
}

func TestSessionInfo(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name          string
		last          time.Time
		wantIdle      time.Duration
		wantRemaining time.Duration
	}{
		{"no_activity", time.Time{}, 0, 10 * time.Minute},
		{"recent", now.Add(-3 * time.Minute), 3 * time.Minute, 7 * time.Minute},
		{"overdue", now.Add(-time.Hour), time.Hour, 0},
		{"clock_skew", now.Add(time.Minute), 0, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := SessionInfo{TimeoutMinutes: 10, LastActivity: tt.last, Now: now}
			assert.Equal(t, tt.wantIdle, info.Idle())
			assert.Equal(t, tt.wantRemaining, info.Remaining())
		})
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCLI, f)

	_, err = ParseFormat("yaml")
	assert.Equal(t, errors.CategoryUser, errors.Classify(err))

	m, err := ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, m)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestNewTimerResponse(t *testing.T) {
	resp := NewTimerResponse(timer.Snapshot{State: timer.Idle, TimeoutMinutes: 15}, 60, []int{5, 10, 15, 30, 60})
	assert.Equal(t, "idle", resp.State)
	assert.Equal(t, 15, resp.TimeoutMinutes)
	assert.Equal(t, 60, resp.WarningSeconds)
	assert.Len(t, resp.AllowedMinutes, 5)
}

func TestNewErrorResponse(t *testing.T) {
	err := &errors.UserError{Message: "todo text is required", Suggestion: "Type something.", Cause: errors.ErrEmptyTodo}
	resp := NewErrorResponse(err)

	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "user", resp.Category)
	assert.Equal(t, "todo text is required", resp.Error)
	assert.Equal(t, "Type something.", resp.Suggestion)
}
