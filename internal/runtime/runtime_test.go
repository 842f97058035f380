package runtime

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/output"
	"github.com/manav03panchal/tidytodo/internal/remote/demoapi"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// =============================================================================
// Context Tests
// =============================================================================

func newTestContext(t *testing.T, clock timer.Clock) (*Context, *demoapi.Server) {
	t.Helper()

	api := demoapi.New(nil, nil)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := config.DefaultRuntimeConfig()
	cfg.Remote.BaseURL = srv.URL
	cfg.Remote.Timeout = 2 * time.Second

	ctx, err := New(Options{Config: cfg, InMemory: true, ColorMode: output.ColorNever, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
	return ctx, api
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.NotEmpty(t, opts.DBPath)
	assert.False(t, opts.InMemory)
	assert.Equal(t, output.FormatCLI, opts.Format)
	assert.Equal(t, output.ColorAuto, opts.ColorMode)
	assert.False(t, opts.Debug)
}

func TestNew(t *testing.T) {
	ctx, _ := newTestContext(t, nil)

	assert.NotNil(t, ctx.Store)
	assert.NotNil(t, ctx.Formatter)
	assert.NotNil(t, ctx.SessionRepo)
	assert.NotNil(t, ctx.UserRepo)
	assert.NotNil(t, ctx.SettingsRepo)
	assert.NotNil(t, ctx.LocalTodos)
	assert.NotNil(t, ctx.Auth)
	assert.NotNil(t, ctx.Todos)
	assert.Equal(t, timer.Idle, ctx.Timer.State())
	assert.Equal(t, 10, ctx.Timer.TimeoutMinutes())
	assert.False(t, ctx.Session.Present())
}

func TestNewWithOptions(t *testing.T) {
	ctx, err := New(Options{
		Config:    config.DefaultRuntimeConfig(),
		InMemory:  true,
		Driver:    config.DriverSQLite,
		Format:    output.FormatJSON,
		ColorMode: output.ColorNever,
		Debug:     true,
	})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, output.FormatJSON, ctx.Formatter.Format)
	assert.Equal(t, output.ColorNever, ctx.Formatter.ColorMode)
	assert.True(t, ctx.Debug)
	assert.True(t, ctx.IsJSON())
	assert.False(t, ctx.IsCLI())
}

func TestNewOnDiskRestoresSessionAndTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	cfg := config.DefaultRuntimeConfig()

	first, err := New(Options{Config: cfg, DBPath: path})
	require.NoError(t, err)
	require.NoError(t, first.Session.Set(&model.User{ID: 2000, Username: "local", Token: "mock_token_a"}))
	require.NoError(t, first.SetTimeout(30))
	require.NoError(t, first.Close())

	second, err := New(Options{Config: cfg, DBPath: path})
	require.NoError(t, err)
	defer second.Close()

	require.True(t, second.Session.Present())
	assert.Equal(t, "local", second.Session.Current().Username)
	assert.Equal(t, "mock_token_a", second.Remote.Token())
	assert.Equal(t, 30, second.Timer.TimeoutMinutes())
}

func TestWatchSessionDrivesTimer(t *testing.T) {
	clock := timer.NewManualClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx, _ := newTestContext(t, clock)

	stop := ctx.WatchSession()
	defer stop()
	assert.Equal(t, timer.Idle, ctx.Timer.State())

	ok, err := ctx.Auth.Login(context.Background(), "emilys", "emilyspass")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, timer.Running, ctx.Timer.State())

	require.NoError(t, ctx.Auth.Logout())
	assert.Equal(t, timer.Idle, ctx.Timer.State())
}

func TestTimeoutLogsOut(t *testing.T) {
	clock := timer.NewManualClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx, _ := newTestContext(t, clock)
	require.NoError(t, ctx.SetTimeout(5))

	stop := ctx.WatchSession()
	defer stop()

	ok, err := ctx.Auth.Login(context.Background(), "emilys", "emilyspass")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(4 * time.Minute)
	assert.Equal(t, timer.Warning, ctx.Timer.State())
	assert.True(t, ctx.Session.Present())

	clock.Advance(time.Minute)
	assert.Equal(t, timer.Idle, ctx.Timer.State())
	assert.False(t, ctx.Session.Present())
	assert.Empty(t, ctx.Remote.Token())
}

func TestWatchSessionStartsForRestoredSession(t *testing.T) {
	clock := timer.NewManualClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx, _ := newTestContext(t, clock)
	require.NoError(t, ctx.Session.Set(&model.User{ID: 1, Username: "emilys", Token: "t"}))

	stop := ctx.WatchSession()
	assert.Equal(t, timer.Running, ctx.Timer.State())

	stop()
	assert.Equal(t, timer.Idle, ctx.Timer.State())
}

func TestRequireSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("not_logged_in", func(t *testing.T) {
		ctx, _ := newTestContext(t, nil)
		_, err := ctx.RequireSession()
		assert.ErrorIs(t, err, errors.ErrNotLoggedIn)
	})

	t.Run("active", func(t *testing.T) {
		ctx, _ := newTestContext(t, nil)
		ctx.now = func() time.Time { return now }
		require.NoError(t, ctx.Session.Set(&model.User{ID: 1, Username: "emilys"}))
		ctx.Touch()

		ctx.now = func() time.Time { return now.Add(9 * time.Minute) }
		user, err := ctx.RequireSession()
		require.NoError(t, err)
		assert.Equal(t, "emilys", user.Username)
	})

	t.Run("expired_destroys_session", func(t *testing.T) {
		ctx, _ := newTestContext(t, nil)
		ctx.now = func() time.Time { return now }
		require.NoError(t, ctx.Session.Set(&model.User{ID: 1, Username: "emilys"}))
		ctx.Touch()

		ctx.now = func() time.Time { return now.Add(11 * time.Minute) }
		_, err := ctx.RequireSession()
		assert.ErrorIs(t, err, errors.ErrSessionExpired)
		assert.False(t, ctx.Session.Present())
	})
}

func TestSetTimeoutRejectsUnknownValue(t *testing.T) {
	ctx, _ := newTestContext(t, nil)

	err := ctx.SetTimeout(7)
	assert.ErrorIs(t, err, errors.ErrInvalidTimeout)
	assert.Equal(t, 10, ctx.Timer.TimeoutMinutes())

	minutes, err := ctx.SettingsRepo.TimeoutMinutes(10)
	require.NoError(t, err)
	assert.Equal(t, 10, minutes)
}

func TestOriginAndLocalAccount(t *testing.T) {
	ctx, _ := newTestContext(t, nil)

	assert.Equal(t, "remote", ctx.Origin(3))
	assert.Equal(t, "local", ctx.Origin(1700000000000))
	assert.True(t, ctx.IsLocalAccount(&model.User{ID: 1700000000000}))
	assert.False(t, ctx.IsLocalAccount(&model.User{ID: 1}))
	assert.False(t, ctx.IsLocalAccount(nil))
}

func TestDebugf(t *testing.T) {
	ctx, _ := newTestContext(t, nil)
	var buf bytes.Buffer
	ctx.Formatter.Writer = &buf

	ctx.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	ctx.Debug = true
	ctx.Debugf("shown %d", 2)
	assert.Equal(t, "[DEBUG] shown 2\n", buf.String())
}

// =============================================================================
// Error Tests
// =============================================================================

func TestFormatError(t *testing.T) {
	msg := FormatError(errors.ErrNotLoggedIn)
	assert.Contains(t, msg, "not logged in")
	assert.Contains(t, msg, "tidytodo login")

	assert.Equal(t, "plain", FormatError(fmt.Errorf("plain")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"not_logged_in", errors.ErrNotLoggedIn, ExitNoSession},
		{"expired", fmt.Errorf("wrapped: %w", errors.ErrSessionExpired), ExitNoSession},
		{"remote", fmt.Errorf("list: %w", errors.ErrRemoteUnavailable), ExitRemote},
		{"user", errors.ErrEmptyTodo, ExitUserError},
		{"other", fmt.Errorf("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
