// Package model defines the domain models for tidytodo.
package model

import (
	"strconv"
	"strings"
)

// Model is the interface that models stored under their own key implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// Key constants for the durable local store.
const (
	PrefixLocalTodos = "localtodos"
	KeySessionToken  = "session:token"
	KeySessionUser   = "session:user"
	KeySessionSeen   = "session:last_activity"
	KeyMockUsers     = "mockusers"
	KeyTimerSettings = "config:timer"
)

// LocalTodosKey returns the key of an owner's local fallback collection.
func LocalTodosKey(ownerID int64) string {
	return PrefixLocalTodos + ":" + strconv.FormatInt(ownerID, 10)
}

// OwnerFromLocalTodosKey extracts the owner id from a local collection key.
func OwnerFromLocalTodosKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, PrefixLocalTodos+":")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
