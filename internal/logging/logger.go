// Package logging provides structured logging for tidytodo.
// It wraps the standard library slog with a process-wide logger that writes
// text to stderr by default and JSON with source locations in debug mode.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// defaultLogger is the package-level logger instance.
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex

	// Debug indicates if debug mode is enabled.
	Debug bool
)

func init() {
	// Quiet by default: the CLI renders its own user-facing errors.
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level // Minimum log level
	JSON      bool       // Use JSON output format
	Output    io.Writer  // Output destination (default: stderr)
	AddSource bool       // Include source file and line number
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		JSON:   false,
		Output: os.Stderr,
	}
}

// DebugConfig returns a configuration suitable for debug mode.
func DebugConfig() Config {
	return Config{
		Level:     slog.LevelDebug,
		JSON:      true,
		Output:    os.Stderr,
		AddSource: true,
	}
}

// Init initializes the global logger with the given configuration.
func Init(cfg Config) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	Debug = cfg.Level == slog.LevelDebug
}

// ParseLevel maps a level name such as "info" or "WARN" to a slog level.
func ParseLevel(name string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return DefaultConfig().Level, false
	}
	return level, true
}

// InitLevel initializes the default text logger at the named level. Unknown
// names are reported and leave the default level in place.
func InitLevel(name string) {
	cfg := DefaultConfig()
	level, ok := ParseLevel(name)
	cfg.Level = level
	Init(cfg)
	if !ok {
		Warn("unknown log level, using default", "level", name)
	}
}

// InitDebug initializes the logger in debug mode with JSON output.
func InitDebug() {
	Init(DebugConfig())
}

// Logger returns the current logger instance.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// With returns a logger with additional attributes. Sensitive values are masked.
func With(args ...any) *slog.Logger {
	return Logger().With(MaskArgs(args)...)
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Logger().Info(msg, MaskArgs(args)...)
}

// DebugLog logs at DEBUG level.
func DebugLog(msg string, args ...any) {
	Logger().Debug(msg, MaskArgs(args)...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, MaskArgs(args)...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Logger().Error(msg, MaskArgs(args)...)
}

// DebugContext logs at DEBUG level with the request id from ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).DebugContext(ctx, msg, MaskArgs(args)...)
}

// WarnContext logs at WARN level with the request id from ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).WarnContext(ctx, msg, MaskArgs(args)...)
}

// Common structured logging fields.
const (
	KeyRequestID = "request_id"
	KeyOperation = "op"
	KeyError     = "error"
	KeyOwnerID   = "owner_id"
	KeyTodoID    = "todo_id"
	KeyOrigin    = "origin"
	KeyState     = "state"
	KeyRemaining = "seconds_remaining"
	KeyTimeout   = "timeout_minutes"
	KeyURL       = "url"
	KeyStatus    = "status"
	KeyCount     = "count"
	KeyBackend   = "backend"
	KeyUsername  = "username"
)
