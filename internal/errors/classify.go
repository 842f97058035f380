package errors

import (
	"context"
	"errors"
	"syscall"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, unknown id).
	CategoryUser
	// CategorySystem indicates a system-level error (disk full, corrupt store).
	CategorySystem
	// CategoryRetryable indicates an error the user may retry by hand.
	CategoryRetryable
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	if IsUserError(err) || isUserLevel(err) {
		return CategoryUser
	}
	if isRetryable(err) {
		return CategoryRetryable
	}
	if IsSystemError(err) || isSystemLevel(err) {
		return CategorySystem
	}

	return CategoryUnknown
}

func isUserLevel(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrNotLoggedIn) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrEmptyTodo) ||
		errors.Is(err, ErrInvalidTodoID)
}

// isSystemLevel checks if an error is a system-level error.
func isSystemLevel(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC, syscall.EACCES, syscall.EPERM, syscall.EIO, syscall.EROFS:
			return true
		}
	}

	return errors.Is(err, ErrDiskFull) ||
		errors.Is(err, ErrLocalStoreCorrupt) ||
		errors.Is(err, ErrLockHeld)
}

// isRetryable covers failures where running the same command again may succeed.
// Nothing is retried automatically.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ETIMEDOUT, syscall.ECONNREFUSED, syscall.ECONNRESET:
			return true
		}
	}

	return false
}
