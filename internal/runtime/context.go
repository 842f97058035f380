// Package runtime provides application runtime context for tidytodo.
package runtime

import (
	"context"
	"time"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/output"
	"github.com/manav03panchal/tidytodo/internal/remote"
	"github.com/manav03panchal/tidytodo/internal/session"
	"github.com/manav03panchal/tidytodo/internal/storage"
	"github.com/manav03panchal/tidytodo/internal/timer"
	"github.com/manav03panchal/tidytodo/internal/todo"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	Store     storage.KV
	DBPath    string
	InMemory  bool
	Formatter *output.Formatter

	// Repositories
	SessionRepo  *storage.SessionRepo
	UserRepo     *storage.MockUserRepo
	SettingsRepo *storage.TimerSettingsRepo
	LocalTodos   *storage.LocalTodoRepo

	Remote  *remote.Client
	Session *session.Store
	Auth    *session.Authenticator
	Todos   *todo.Service
	Timer   *timer.Inactivity

	// Debug mode
	Debug bool

	now func() time.Time
}

// Options configures the runtime context.
type Options struct {
	// Config defaults to config.Global.
	Config    *config.RuntimeConfig
	Driver    string
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
	// Clock drives the inactivity timer. Defaults to the wall clock.
	Clock timer.Clock
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	cfg := config.Global
	path := cfg.Storage.Path
	if path == "" {
		path = storage.DefaultPath(cfg.Storage.Driver)
	}
	return Options{
		Config:    cfg,
		Driver:    cfg.Storage.Driver,
		DBPath:    path,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context: it opens the store, restores the
// persisted session and wires the inactivity timer to the authenticator.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Global
	}
	if opts.Driver == "" {
		opts.Driver = cfg.Storage.Driver
	}
	if opts.DBPath == "" && !opts.InMemory {
		opts.DBPath = cfg.Storage.Path
	}

	kv, err := storage.Open(storage.Options{
		Driver:   opts.Driver,
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	c := &Context{
		Config:       cfg,
		Store:        kv,
		DBPath:       opts.DBPath,
		InMemory:     opts.InMemory || opts.DBPath == "" || opts.DBPath == storage.MemoryPath,
		SessionRepo:  storage.NewSessionRepo(kv),
		UserRepo:     storage.NewMockUserRepo(kv),
		SettingsRepo: storage.NewTimerSettingsRepo(kv),
		LocalTodos:   storage.NewLocalTodoRepo(kv),
		Remote:       remote.NewClient(cfg.Remote),
		Debug:        opts.Debug,
		now:          time.Now,
	}

	if opts.Clock != nil {
		c.now = opts.Clock.Now
	}

	c.Session = session.NewStore(c.SessionRepo)
	if err := c.Session.Load(); err != nil {
		kv.Close()
		return nil, err
	}
	c.Auth = session.NewAuthenticator(c.Session, c.Remote, c.UserRepo)
	c.Todos = todo.NewService(c.Remote, c.LocalTodos, todo.NewClassifier(cfg.Routing))

	minutes, err := c.SettingsRepo.TimeoutMinutes(cfg.Session.DefaultTimeoutMinutes)
	if err != nil {
		logging.Warn("could not read timer settings", logging.KeyError, err)
	}
	if !cfg.IsAllowedTimeout(minutes) {
		minutes = cfg.Session.DefaultTimeoutMinutes
	}
	c.Timer = timer.NewInactivity(timer.Config{
		TimeoutMinutes:  minutes,
		WarningSeconds:  cfg.Session.WarningSeconds,
		AllowedTimeouts: cfg.Session.AllowedTimeouts,
		Clock:           opts.Clock,
		OnLogout:        c.onTimerLogout,
	})

	// Create formatter
	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode
	if formatter.Format == "" {
		formatter.Format = output.FormatCLI
	}
	if formatter.ColorMode == "" {
		formatter.ColorMode = output.ColorAuto
	}
	c.Formatter = formatter

	return c, nil
}

func (c *Context) onTimerLogout(reason timer.LogoutReason) {
	logging.Info("session ended", "reason", reason.String())
	if err := c.Auth.Logout(); err != nil {
		logging.Error("logout failed", logging.KeyError, err)
	}
}

// WatchSession starts the inactivity timer whenever a session begins and
// stops it when the session ends. A session already restored at startup
// starts the timer immediately. The returned function stops watching.
func (c *Context) WatchSession() func() {
	unsubscribe := c.Session.Subscribe(func(u *model.User) {
		if u != nil {
			c.Timer.Start()
			return
		}
		c.Timer.Stop()
	})
	if c.Session.Present() {
		c.Timer.Start()
	}
	return func() {
		unsubscribe()
		c.Timer.Stop()
	}
}

// SessionTimeout returns the configured inactivity timeout.
func (c *Context) SessionTimeout() time.Duration {
	return time.Duration(c.Timer.TimeoutMinutes()) * time.Minute
}

// RequireSession returns the logged-in user. One-shot commands share the
// inactivity timeout with the dashboard: a session idle for longer than the
// timeout is destroyed here and ErrSessionExpired is returned.
func (c *Context) RequireSession() (*model.User, error) {
	user := c.Session.Current()
	if user == nil {
		return nil, errors.ErrNotLoggedIn
	}

	expired, err := c.Session.Expired(c.now(), c.SessionTimeout())
	if err != nil {
		return nil, err
	}
	if expired {
		if err := c.Auth.Logout(); err != nil {
			return nil, err
		}
		return nil, errors.ErrSessionExpired
	}
	return user, nil
}

// SessionInfo describes the current session for display.
func (c *Context) SessionInfo() output.SessionInfo {
	info := output.SessionInfo{
		User:           c.Session.Current(),
		TimeoutMinutes: c.Timer.TimeoutMinutes(),
		Now:            c.now(),
	}
	if info.User == nil {
		return info
	}
	info.Local = c.IsLocalAccount(info.User)
	last, err := c.SessionRepo.LastActivity()
	if err != nil {
		logging.Warn("could not read last activity", logging.KeyError, err)
	}
	info.LastActivity = last
	return info
}

// Touch records activity for the current session.
func (c *Context) Touch() {
	if err := c.Session.Touch(c.now()); err != nil {
		logging.Warn("could not record activity", logging.KeyError, err)
	}
}

// SetTimeout validates and applies a new inactivity timeout and persists it.
func (c *Context) SetTimeout(minutes int) error {
	if err := c.Timer.UpdateTimeoutDuration(minutes); err != nil {
		return err
	}
	return c.SettingsRepo.SetTimeoutMinutes(minutes)
}

// Origin labels a todo id as local or remote for display.
func (c *Context) Origin(id int64) string {
	return c.Todos.Classifier().ClassifyTodoID(id).String()
}

// IsLocalAccount reports whether the user was registered on this machine.
func (c *Context) IsLocalAccount(user *model.User) bool {
	return user != nil && c.Todos.Classifier().IsMockOwner(user.ID)
}

// DiskSpaceWarning returns a warning when the store's disk is low on space.
func (c *Context) DiskSpaceWarning() string {
	if c.InMemory {
		return ""
	}
	return storage.CheckDiskSpaceWarning(c.DBPath, c.Config.Storage.MinFreeSpaceWarning)
}

// RequestContext returns a context carrying a fresh request id and the
// logged-in user, for log correlation.
func (c *Context) RequestContext(parent context.Context) context.Context {
	ctx := logging.NewRequestContext(parent)
	if user := c.Session.Current(); user != nil {
		ctx = logging.WithOwner(ctx, user.ID)
	}
	return ctx
}

// Close stops the timer and closes the store.
func (c *Context) Close() error {
	if c.Timer != nil {
		c.Timer.Stop()
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
