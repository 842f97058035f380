// Package storage provides the durable local key-value layer for tidytodo.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
)

const (
	// AppName is the application name used for data directories.
	AppName = "tidytodo"

	// MemoryPath selects an in-memory store.
	MemoryPath = ":memory:"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the store.
	ErrKeyNotFound = errors.New("key not found")
)

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// KV is the durable string-keyed store consumed by the session store and
// the todo persistence layer.
type KV interface {
	// GetBytes returns the value stored under key or ErrKeyNotFound.
	GetBytes(key string) ([]byte, error)
	// SetBytes stores data under key, replacing any previous value.
	SetBytes(key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// ListByPrefix returns all keys starting with prefix, in key order.
	ListByPrefix(prefix string) ([]string, error)
	// Close releases the store.
	Close() error
}

// Options configures the store connection.
type Options struct {
	// Driver is config.DriverBadger (default) or config.DriverSQLite.
	Driver string
	// Path is the store location. Empty string or MemoryPath uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default store path for a driver following XDG spec.
func DefaultPath(driver string) string {
	if driver == config.DriverSQLite {
		return filepath.Join(xdg.DataHome, AppName, "tidytodo.db")
	}
	return filepath.Join(xdg.DataHome, AppName, "db")
}

func (o Options) inMemory() bool {
	return o.InMemory || o.Path == "" || o.Path == MemoryPath
}

// Open opens the configured backend. On-disk stores are guarded by a file
// lock in the parent directory so a second process fails with a readable error.
func Open(opts Options) (KV, error) {
	var lock *FileLock
	if !opts.inMemory() {
		dir := filepath.Dir(opts.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		lock = NewFileLock(dir)
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
	}

	var (
		kv  KV
		err error
	)
	switch opts.Driver {
	case config.DriverSQLite:
		kv, err = OpenSQLite(opts)
	default:
		kv, err = OpenBadger(opts)
	}
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}

	logging.DebugLog("store opened", logging.KeyBackend, driverName(opts.Driver), "path", opts.Path)

	if lock == nil {
		return kv, nil
	}
	return &lockedKV{KV: kv, lock: lock}, nil
}

func driverName(driver string) string {
	if driver == "" {
		return config.DriverBadger
	}
	return driver
}

// lockedKV releases the process lock after closing the store.
type lockedKV struct {
	KV
	lock *FileLock
}

func (l *lockedKV) Close() error {
	err := l.KV.Close()
	if relErr := l.lock.Release(); err == nil {
		err = relErr
	}
	return err
}

// GetModel retrieves a value by key and unmarshals it into v.
func GetModel(kv KV, key string, v model.Model) error {
	data, err := kv.GetBytes(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	v.SetKey(key)
	return nil
}

// SetModel stores a model under its own key.
func SetModel(kv KV, v model.Model) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.SetBytes(v.GetKey(), data)
}
