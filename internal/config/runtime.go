// Package config provides centralized configuration for tidytodo runtime values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// Remote demo service configuration
	Remote RemoteConfig

	// Local store configuration
	Storage StorageConfig

	// Inactivity timer configuration
	Session SessionConfig

	// Todo routing thresholds
	Routing RoutingConfig

	// LogLevel is a slog level name (debug, info, warn, error). Empty keeps
	// the logger's default; --debug takes precedence.
	LogLevel string
}

// RemoteConfig holds configuration for the remote demo REST service.
type RemoteConfig struct {
	// BaseURL is the root of the DummyJSON-compatible API.
	// Default: https://dummyjson.com
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	// Default: 15s
	Timeout time.Duration

	// MaxRetries is the number of extra attempts on 429/5xx responses.
	// Default: 0 (a failed list is retried by the user, not automatically)
	MaxRetries int

	// RetryDelays are the delays before each retry attempt.
	// Default: [0s, 2s, 5s]
	RetryDelays []time.Duration
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// Driver selects the KV backend: "badger" or "sqlite".
	// Default: badger
	Driver string

	// Path overrides the store location. Empty uses the XDG data directory,
	// ":memory:" selects an in-memory store.
	Path string

	// MinFreeSpaceWarning is the threshold for warning about low disk space.
	// Default: 50MB
	MinFreeSpaceWarning uint64
}

// SessionConfig holds inactivity timer configuration.
type SessionConfig struct {
	// DefaultTimeoutMinutes is the inactivity timeout before auto-logout.
	// Default: 10
	DefaultTimeoutMinutes int

	// WarningSeconds is the length of the final warning window.
	// Default: 60
	WarningSeconds int

	// AllowedTimeouts lists the selectable timeout values in minutes.
	AllowedTimeouts []int
}

// RoutingConfig holds the id thresholds that decide where todos live.
type RoutingConfig struct {
	// DemoOwnerID is the single account that exists on the remote service.
	// Default: 1
	DemoOwnerID int64

	// MockOwnerThreshold: owner ids above it are locally registered accounts.
	// Default: 1000
	MockOwnerThreshold int64

	// LocalIDThreshold: todo ids above it were generated locally.
	// Default: 1000000
	LocalIDThreshold int64
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Remote: RemoteConfig{
			BaseURL:    "https://dummyjson.com",
			Timeout:    15 * time.Second,
			MaxRetries: 0,
			RetryDelays: []time.Duration{
				0,
				2 * time.Second,
				5 * time.Second,
			},
		},
		Storage: StorageConfig{
			Driver:              DriverBadger,
			MinFreeSpaceWarning: 50 * 1024 * 1024, // 50MB
		},
		Session: SessionConfig{
			DefaultTimeoutMinutes: 10,
			WarningSeconds:        60,
			AllowedTimeouts:       []int{5, 10, 15, 30, 60},
		},
		Routing: RoutingConfig{
			DemoOwnerID:        1,
			MockOwnerThreshold: 1000,
			LocalIDThreshold:   1000000,
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via environment variables.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	c.LogLevel = strings.ToLower(os.Getenv("TIDYTODO_LOG_LEVEL"))

	// Remote configuration
	if v := os.Getenv("TIDYTODO_API_URL"); v != "" {
		c.Remote.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("TIDYTODO_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Remote.Timeout = d
		}
	}
	if v := os.Getenv("TIDYTODO_HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Remote.MaxRetries = n
		}
	}

	// Storage configuration
	if v := os.Getenv("TIDYTODO_STORE"); v == DriverBadger || v == DriverSQLite {
		c.Storage.Driver = v
	}
	if v := os.Getenv("TIDYTODO_DATABASE"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("TIDYTODO_MIN_FREE_SPACE_WARNING"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Storage.MinFreeSpaceWarning = n
		}
	}

	// Session configuration
	if v := os.Getenv("TIDYTODO_DEFAULT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && c.IsAllowedTimeout(n) {
			c.Session.DefaultTimeoutMinutes = n
		}
	}
}

// IsAllowedTimeout reports whether minutes is one of the selectable timeouts.
func (c *RuntimeConfig) IsAllowedTimeout(minutes int) bool {
	for _, m := range c.Session.AllowedTimeouts {
		if m == minutes {
			return true
		}
	}
	return false
}

// WarningDuration returns the warning window as a duration.
func (c *RuntimeConfig) WarningDuration() time.Duration {
	return time.Duration(c.Session.WarningSeconds) * time.Second
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}
