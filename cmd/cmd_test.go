package cmd

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/remote/demoapi"
	"github.com/manav03panchal/tidytodo/internal/runtime"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

type cliHarness struct {
	t     *testing.T
	demo  *demoapi.Server
	clock *timer.ManualClock
}

func setup(t *testing.T, driver string) *cliHarness {
	t.Helper()

	demo := demoapi.New(nil, nil)
	srv := httptest.NewServer(demo)
	t.Cleanup(srv.Close)

	name := "db"
	if driver == config.DriverSQLite {
		name = "tidytodo.db"
	}
	t.Setenv("TIDYTODO_API_URL", srv.URL)
	t.Setenv("TIDYTODO_STORE", driver)
	t.Setenv("TIDYTODO_DATABASE", filepath.Join(t.TempDir(), name))
	t.Setenv("TIDYTODO_MIN_FREE_SPACE_WARNING", "0")
	config.Global.Reset()
	config.Global.ReloadFromEnv()

	h := &cliHarness{
		t:     t,
		demo:  demo,
		clock: timer.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
	}
	clock = h.clock
	t.Cleanup(func() {
		clock = nil
		stdin = strings.NewReader("")
		config.Global.Reset()
	})
	return h
}

func resetFlags() {
	flagFormat, flagColor, flagDebug = "cli", "never", false
	authFlagPassword, authFlagEmail, authFlagFirstName, authFlagLastName = "", "", "", ""
	todoFlagDone = false
	doctorFlagFix = false
	serveFlagAddr = "127.0.0.1:8088"
}

// run executes the CLI with args and returns everything it wrote.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *cliHarness) json(v any, args ...string) {
	h.t.Helper()
	out := h.mustRun(append([]string{"--format", "json"}, args...)...)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

type todosJSON struct {
	Todos []struct {
		ID        int64  `json:"id"`
		Text      string `json:"todo"`
		Completed bool   `json:"completed"`
		Origin    string `json:"origin"`
	} `json:"todos"`
	TotalCount     int `json:"total_count"`
	CompletedCount int `json:"completed_count"`
}

type todoJSON struct {
	Status string `json:"status"`
	Todo   struct {
		ID        int64  `json:"id"`
		Text      string `json:"todo"`
		Completed bool   `json:"completed"`
		Origin    string `json:"origin"`
	} `json:"todo"`
}

func TestVersion(t *testing.T) {
	h := setup(t, config.DriverBadger)
	out := h.mustRun("version")
	assert.Contains(t, out, "tidytodo dev")
}

func TestCompletionScripts(t *testing.T) {
	h := setup(t, config.DriverBadger)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out := h.mustRun("completion", shell)
			assert.Contains(t, out, "tidytodo")
		})
	}

	_, err := h.run("completion", "tcsh")
	assert.Error(t, err)
}

func TestNotLoggedIn(t *testing.T) {
	h := setup(t, config.DriverBadger)

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Not logged in.")

	_, err := h.run("todo", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotLoggedIn)
	assert.Equal(t, runtime.ExitNoSession, ExitCode(err))
}

func TestDemoAccountFlow(t *testing.T) {
	for _, driver := range []string{config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			h := setup(t, driver)

			out := h.mustRun("login", "emilys", "--password", "emilyspass")
			assert.Contains(t, out, "Logged in as Emily Johnson (emilys)")

			var list todosJSON
			h.json(&list, "todo", "list")
			require.Len(t, list.Todos, 2)
			assert.Equal(t, "remote", list.Todos[0].Origin)

			var added todoJSON
			h.json(&added, "todo", "add", "buy", "milk")
			assert.Equal(t, "created", added.Status)
			assert.Equal(t, "buy milk", added.Todo.Text)
			assert.Equal(t, "local", added.Todo.Origin)

			list = todosJSON{}
			h.json(&list, "todo", "list")
			require.Len(t, list.Todos, 3)
			assert.Equal(t, added.Todo.ID, list.Todos[2].ID, "remote todos come first")

			id := strconv.FormatInt(added.Todo.ID, 10)
			out = h.mustRun("todo", "done", id)
			assert.Contains(t, out, "Completed todo "+id)

			out = h.mustRun("todo", "edit", id, "buy", "oat", "milk")
			assert.Contains(t, out, "buy oat milk")

			out = h.mustRun("todo", "rm", id)
			assert.Contains(t, out, "Deleted todo "+id)

			list = todosJSON{}
			h.json(&list, "todo", "list")
			assert.Len(t, list.Todos, 2)

			out = h.mustRun("logout")
			assert.Contains(t, out, "Logged out emilys")
		})
	}
}

func TestWhoamiShowsIdleTime(t *testing.T) {
	h := setup(t, config.DriverBadger)
	h.mustRun("login", "emilys", "--password", "emilyspass")

	h.clock.Advance(3 * time.Minute)
	out := h.mustRun("whoami")
	assert.Contains(t, out, "Last activity: 3m ago, 7m left")

	var resp struct {
		Status           string `json:"status"`
		RemainingSeconds int    `json:"remaining_seconds"`
	}
	h.json(&resp, "whoami")
	assert.Equal(t, "logged_in", resp.Status)
	assert.Equal(t, 600, resp.RemainingSeconds, "the previous whoami counted as activity")
}

func TestUnknownFormat(t *testing.T) {
	h := setup(t, config.DriverBadger)

	_, err := h.run("--format", "yaml", "whoami")
	require.Error(t, err)
	assert.Equal(t, runtime.ExitUserError, ExitCode(err))
}

func TestLoginWrongPassword(t *testing.T) {
	h := setup(t, config.DriverBadger)

	_, err := h.run("login", "emilys", "--password", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAuthFailed)

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginPasswordFromStdin(t *testing.T) {
	h := setup(t, config.DriverBadger)

	stdin = strings.NewReader("emilyspass\n")
	out := h.mustRun("login", "emilys")
	assert.Contains(t, out, "Logged in as")
}

func TestLocalAccountFlow(t *testing.T) {
	h := setup(t, config.DriverBadger)

	out := h.mustRun("register", "sam", "--password", "secret", "--first-name", "Sam")
	assert.Contains(t, out, "Logged in as Sam (sam)")

	var list todosJSON
	h.json(&list, "todo", "list")
	assert.Empty(t, list.Todos, "an unknown remote user falls back to an empty local list")

	var added todoJSON
	h.json(&added, "todo", "add", "--done", "water plants")
	assert.True(t, added.Todo.Completed)
	assert.Equal(t, "local", added.Todo.Origin)

	id := strconv.FormatInt(added.Todo.ID, 10)
	out = h.mustRun("__complete", "todo", "undone", "")
	assert.Contains(t, out, id+"\twater plants")

	h.mustRun("todo", "undone", id)
	list = todosJSON{}
	h.json(&list, "todo", "list")
	require.Len(t, list.Todos, 1)
	assert.False(t, list.Todos[0].Completed)

	h.mustRun("logout")

	// Local accounts keep working when the remote service is down.
	h.demo.SetDown(true)
	out = h.mustRun("login", "sam", "--password", "secret")
	assert.Contains(t, out, "Logged in as Sam")

	list = todosJSON{}
	h.json(&list, "todo", "list")
	assert.Len(t, list.Todos, 1)
}

func TestListRemoteDown(t *testing.T) {
	h := setup(t, config.DriverBadger)
	h.mustRun("login", "emilys", "--password", "emilyspass")

	h.demo.SetDown(true)
	out, err := h.run("todo", "list")
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))
	assert.Equal(t, runtime.ExitRemote, ExitCode(err))
	assert.Contains(t, out, "Could not load todos")
}

func TestSessionExpiresAfterInactivity(t *testing.T) {
	h := setup(t, config.DriverBadger)
	h.mustRun("login", "emilys", "--password", "emilyspass")
	h.mustRun("timeout", "set", "5")

	h.clock.Advance(4 * time.Minute)
	h.mustRun("todo", "list")

	// Activity from the previous command counts.
	h.clock.Advance(4 * time.Minute)
	h.mustRun("todo", "list")

	h.clock.Advance(5*time.Minute + time.Second)
	_, err := h.run("todo", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSessionExpired)
	assert.Equal(t, runtime.ExitNoSession, ExitCode(err))

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Not logged in.")
}

func TestTimeoutCommand(t *testing.T) {
	h := setup(t, config.DriverBadger)

	out := h.mustRun("timeout")
	assert.Contains(t, out, "Inactivity timeout: 10 minutes")

	out = h.mustRun("timeout", "set", "30")
	assert.Contains(t, out, "Auto-logout set to 30 minutes")

	var resp struct {
		TimeoutMinutes int   `json:"timeout_minutes"`
		Allowed        []int `json:"allowed_minutes"`
	}
	h.json(&resp, "timeout", "get")
	assert.Equal(t, 30, resp.TimeoutMinutes)
	assert.Equal(t, []int{5, 10, 15, 30, 60}, resp.Allowed)

	tests := []struct {
		name string
		arg  string
	}{
		{"not_allowed", "7"},
		{"not_a_number", "ten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run("timeout", "set", tt.arg)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidTimeout)
			assert.Equal(t, runtime.ExitUserError, ExitCode(err))
		})
	}
}

func TestTodoInvalidArgs(t *testing.T) {
	h := setup(t, config.DriverBadger)
	h.mustRun("login", "emilys", "--password", "emilyspass")

	_, err := h.run("todo", "done", "abc")
	assert.ErrorIs(t, err, errors.ErrInvalidTodoID)

	_, err = h.run("todo", "rm", "2000000")
	assert.ErrorIs(t, err, errors.ErrNotFound, "unknown local ids never reach the remote")
}

func TestServeDemoInvalidAddr(t *testing.T) {
	h := setup(t, config.DriverBadger)

	_, err := h.run("serve-demo", "--addr", "no-port")
	require.Error(t, err)
	assert.Equal(t, runtime.ExitUserError, ExitCode(err))
}

func TestDoctor(t *testing.T) {
	h := setup(t, config.DriverBadger)
	h.mustRun("register", "sam", "--password", "secret")

	var report struct {
		Healthy     bool   `json:"healthy"`
		CheckedKeys int    `json:"checked_keys"`
		Backend     string `json:"backend"`
	}
	h.json(&report, "doctor")
	assert.True(t, report.Healthy)
	assert.Positive(t, report.CheckedKeys)
	assert.Equal(t, config.DriverBadger, report.Backend)

	out := h.mustRun("doctor")
	assert.Contains(t, out, "No problems found")
}
