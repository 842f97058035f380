// Package errors provides consistent error types for tidytodo.
// It defines the todo routing taxonomy (remote unavailable, not found, corrupt
// local data, failed authentication), the session errors, and the UserError
// and SystemError categories used when rendering failures in the CLI.
package errors

import (
	"errors"
	"fmt"
)

// Todo routing errors.
var (
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	ErrNotFound          = errors.New("todo not found")
	ErrLocalStoreCorrupt = errors.New("local store data is corrupt")
)

// Session errors.
var (
	ErrAuthFailed     = errors.New("authentication failed")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired after inactivity")
	ErrInvalidTimeout = errors.New("invalid session timeout")
)

// Input and environment errors.
var (
	ErrEmptyTodo     = errors.New("todo text is required")
	ErrInvalidTodoID = errors.New("invalid todo id")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrDiskFull      = errors.New("disk full")
	ErrLockHeld      = errors.New("database locked by another process")
)

// UserError represents an error that the user can fix.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
	Cause      error  // Sentinel the error matches (optional)
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a UserError about one input field.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError is a failure of the local environment, such as a full disk.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemErrorWithOp creates a SystemError for a failed operation.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsNotFound reports whether err marks a todo that exists nowhere it should.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRemoteUnavailable reports whether err came from an unreachable or failing
// remote service with no local fallback.
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}

// IsSessionEnded reports whether err means there is no usable session,
// either because nobody logged in or because it expired.
func IsSessionEnded(err error) bool {
	return errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrSessionExpired)
}

// Is is re-exported from the standard errors package for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is re-exported from the standard errors package for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is re-exported from the standard errors package for convenience.
func New(text string) error {
	return errors.New(text)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
