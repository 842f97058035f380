package output

import (
	"time"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/timer"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// TodoOutput represents a todo in JSON output.
type TodoOutput struct {
	ID        int64  `json:"id"`
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"user_id"`
	Origin    string `json:"origin"`
}

// NewTodoOutput creates a TodoOutput from a Todo.
func NewTodoOutput(t model.Todo, origin string) *TodoOutput {
	return &TodoOutput{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		OwnerID:   t.OwnerID,
		Origin:    origin,
	}
}

// TodosResponse represents the todo list output in JSON.
type TodosResponse struct {
	Todos          []*TodoOutput `json:"todos"`
	TotalCount     int           `json:"total_count"`
	CompletedCount int           `json:"completed_count"`
}

// NewTodosResponse creates a TodosResponse from todos.
func NewTodosResponse(todos []model.Todo, origin func(id int64) string) *TodosResponse {
	resp := &TodosResponse{
		Todos:      make([]*TodoOutput, len(todos)),
		TotalCount: len(todos),
	}
	for i, t := range todos {
		resp.Todos[i] = NewTodoOutput(t, origin(t.ID))
		if t.Completed {
			resp.CompletedCount++
		}
	}
	return resp
}

// TodoResponse represents a single todo change in JSON.
type TodoResponse struct {
	Status string      `json:"status"`
	Todo   *TodoOutput `json:"todo,omitempty"`
	ID     int64       `json:"id,omitempty"`
}

// UserOutput represents the session user in JSON. The token is never included.
type UserOutput struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Local     bool   `json:"local_account"`
}

// SessionResponse represents the session status in JSON.
type SessionResponse struct {
	Status         string      `json:"status"`
	User           *UserOutput `json:"user,omitempty"`
	TimeoutMinutes int         `json:"timeout_minutes"`
	LastActivity   string      `json:"last_activity,omitempty"`
	// RemainingSeconds is the time left before auto-logout.
	RemainingSeconds int `json:"remaining_seconds,omitempty"`
}

// NewSessionResponse creates a SessionResponse.
func NewSessionResponse(info SessionInfo) *SessionResponse {
	resp := &SessionResponse{
		Status:         "logged_out",
		TimeoutMinutes: info.TimeoutMinutes,
	}
	user := info.User
	if user == nil {
		return resp
	}
	resp.Status = "logged_in"
	resp.User = &UserOutput{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Local:     info.Local,
	}
	if !info.LastActivity.IsZero() {
		resp.LastActivity = info.LastActivity.Format(time.RFC3339)
		resp.RemainingSeconds = int(info.Remaining().Seconds())
	}
	return resp
}

// TimerResponse represents the timer settings and state in JSON.
type TimerResponse struct {
	State            string `json:"state"`
	TimeoutMinutes   int    `json:"timeout_minutes"`
	WarningSeconds   int    `json:"warning_seconds"`
	SecondsRemaining int    `json:"seconds_remaining,omitempty"`
	AllowedMinutes   []int  `json:"allowed_minutes"`
}

// NewTimerResponse creates a TimerResponse from a snapshot.
func NewTimerResponse(snap timer.Snapshot, warningSeconds int, allowed []int) *TimerResponse {
	return &TimerResponse{
		State:            snap.State.String(),
		TimeoutMinutes:   snap.TimeoutMinutes,
		WarningSeconds:   warningSeconds,
		SecondsRemaining: snap.SecondsRemaining,
		AllowedMinutes:   allowed,
	}
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Category   string `json:"category"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewErrorResponse creates an ErrorResponse from an error.
func NewErrorResponse(err error) *ErrorResponse {
	return &ErrorResponse{
		Status:     "error",
		Category:   errors.Classify(err).String(),
		Error:      err.Error(),
		Suggestion: errors.GetSuggestion(err),
	}
}

// PrintTodos outputs todos in JSON format.
func (j *JSONFormatter) PrintTodos(todos []model.Todo, origin func(id int64) string) error {
	return j.JSON(NewTodosResponse(todos, origin))
}

// PrintTodo outputs a changed todo in JSON format.
func (j *JSONFormatter) PrintTodo(status string, t *model.Todo, origin string) error {
	return j.JSON(TodoResponse{Status: status, Todo: NewTodoOutput(*t, origin)})
}

// PrintDeleted outputs a delete confirmation in JSON format.
func (j *JSONFormatter) PrintDeleted(id int64) error {
	return j.JSON(TodoResponse{Status: "deleted", ID: id})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(err error) error {
	return j.JSON(NewErrorResponse(err))
}
