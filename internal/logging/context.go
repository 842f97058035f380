package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request id to the demo service, which logs
// it and echoes it back.
const HeaderRequestID = "X-Request-ID"

type contextKey int

const (
	requestIDKey contextKey = iota
	ownerIDKey
)

// NewRequestID returns the first 8 hex digits of a random UUID.
func NewRequestID() string {
	return uuid.NewString()[:8]
}

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// NewRequestContext derives a context carrying a fresh request ID.
func NewRequestContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return WithRequestID(parent, NewRequestID())
}

// RequestIDFromContext returns the request ID of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithOwner records the id of the user a request acts for.
func WithOwner(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// OwnerFromContext returns the owner recorded by WithOwner.
func OwnerFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(ownerIDKey).(int64)
	return id, ok
}

// LoggerFromContext returns the logger annotated with the request ID and
// owner carried by ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logger = logger.With(KeyRequestID, requestID)
	}
	if owner, ok := OwnerFromContext(ctx); ok {
		logger = logger.With(KeyOwnerID, owner)
	}
	return logger
}
