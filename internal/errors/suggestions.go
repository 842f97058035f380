package errors

import "errors"

// suggestions pairs sentinels with a hint. The first match in an error
// chain wins, so session errors come before the errors they may wrap.
var suggestions = []struct {
	err  error
	hint string
}{
	{ErrSessionExpired, "You were logged out after inactivity. Log in again with 'tidytodo login <username>'."},
	{ErrNotLoggedIn, "Log in with 'tidytodo login <username>' first."},
	{ErrAuthFailed, "Check your username and password, or create an account with 'tidytodo register'."},
	{ErrNotFound, "Use 'tidytodo todo list' to see the ids of your todos."},
	{ErrInvalidTimeout, "Choose one of 5, 10, 15, 30 or 60 minutes."},
	{ErrEmptyTodo, "Provide the todo text, e.g. 'tidytodo todo add buy milk'."},
	{ErrInvalidTodoID, "Todo ids are positive whole numbers."},
	{ErrInvalidURL, "Provide a valid URL starting with https:// (or http:// for localhost)."},
	{ErrRemoteUnavailable, "Check your connection and retry the command."},
	{ErrLocalStoreCorrupt, "Run 'tidytodo doctor' to diagnose the local store."},
	{ErrDiskFull, "Free up disk space and try again."},
	{ErrLockHeld, "Another tidytodo instance is running. Close it or check for stale processes."},
}

// Suggestion returns the hint registered for a sentinel error.
func Suggestion(sentinel error) string {
	for _, s := range suggestions {
		if s.err == sentinel {
			return s.hint
		}
	}
	return ""
}

// GetSuggestion returns a hint for err: the UserError's own suggestion when
// it has one, otherwise the hint of the first known sentinel in the chain.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var ue *UserError
	if errors.As(err, &ue) && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for _, s := range suggestions {
		if errors.Is(err, s.err) {
			return s.hint
		}
	}
	return ""
}
