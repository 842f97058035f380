package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteKV implements KV on a single SQLite table (WAL mode).
type SQLiteKV struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates a SQLite-backed store.
func OpenSQLite(opts Options) (*SQLiteKV, error) {
	dsn := ":memory:"
	path := ""
	if !opts.inMemory() {
		path = strings.TrimSpace(opts.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	if path != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLiteKV{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// Path returns the database file, empty for in-memory stores.
func (s *SQLiteKV) Path() string {
	return s.path
}

// GetBytes retrieves raw bytes by key.
func (s *SQLiteKV) GetBytes(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// SetBytes stores raw bytes with the given key.
func (s *SQLiteKV) SetBytes(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, data)
	return err
}

// Delete removes a key.
func (s *SQLiteKV) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// ListByPrefix retrieves all keys with the given prefix in key order.
func (s *SQLiteKV) ListByPrefix(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`,
		len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
