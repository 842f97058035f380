// Package validate provides input validation helpers for the tidytodo CLI.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/manav03panchal/tidytodo/internal/errors"
)

const (
	// MaxTodoLength is the maximum length for a todo's text.
	MaxTodoLength = 1024
	// MaxUsernameLength is the maximum length for a username.
	MaxUsernameLength = 64
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
)

// usernameRegex validates usernames (letters, digits, dots, dashes, underscores).
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// TodoText validates the text of a todo.
func TodoText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &errors.UserError{
			Message:    "todo text is required",
			Field:      "todo",
			Suggestion: errors.Suggestion(errors.ErrEmptyTodo),
			Cause:      errors.ErrEmptyTodo,
		}
	}
	if utf8.RuneCountInString(text) > MaxTodoLength {
		return errors.NewUserError("Todo too long",
			fmt.Sprintf("Todos must be %d characters or fewer", MaxTodoLength))
	}
	return nil
}

// Username validates a username for registration.
func Username(name string) error {
	if name == "" {
		return errors.NewUserError("Username cannot be empty", "Provide a username")
	}
	if len(name) > MaxUsernameLength {
		return errors.NewUserErrorWithField("username", name,
			"Username too long",
			fmt.Sprintf("Usernames must be %d characters or fewer", MaxUsernameLength))
	}
	if !usernameRegex.MatchString(name) {
		return errors.NewUserErrorWithField("username", name,
			"Invalid username",
			"Usernames must start with a letter or number and contain only letters, numbers, dots, dashes, or underscores")
	}
	return nil
}

// Email validates an optional email address.
func Email(email string) error {
	if email == "" {
		return nil
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || !strings.Contains(domain, ".") || strings.ContainsAny(email, " \t") {
		return errors.NewUserErrorWithField("email", email,
			"Invalid email address",
			"Use an address like name@example.com")
	}
	return nil
}

// TimeoutMinutes validates an inactivity timeout against the allowed values.
func TimeoutMinutes(minutes int, allowed []int) error {
	if slices.Contains(allowed, minutes) {
		return nil
	}
	return &errors.UserError{
		Message:    "invalid session timeout",
		Field:      "timeout",
		Value:      strconv.Itoa(minutes),
		Suggestion: fmt.Sprintf("Choose one of %v minutes.", allowed),
		Cause:      errors.ErrInvalidTimeout,
	}
}

// TodoID parses a todo id argument.
func TodoID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &errors.UserError{
			Message:    "invalid todo id",
			Field:      "id",
			Value:      raw,
			Suggestion: errors.Suggestion(errors.ErrInvalidTodoID),
			Cause:      errors.ErrInvalidTodoID,
		}
	}
	return id, nil
}

// BaseURL validates the root URL of the demo service.
func BaseURL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	invalid := func(message string) error {
		return &errors.UserError{
			Message:    message,
			Field:      "url",
			Value:      rawURL,
			Suggestion: errors.Suggestion(errors.ErrInvalidURL),
			Cause:      errors.ErrInvalidURL,
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return invalid("Invalid URL format")
	}

	// Check scheme
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return invalid("Invalid URL scheme")
	}

	// Check hostname exists
	hostname := parsed.Hostname()
	if hostname == "" {
		return invalid("Invalid URL: missing hostname")
	}

	// Require HTTPS for non-localhost
	if parsed.Scheme == "http" && !IsLocalhost(hostname) {
		return invalid("HTTP not allowed for external URLs")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return invalid("URL must not contain a query or fragment")
	}

	return nil
}

// IsLocalhost reports whether hostname refers to the local machine.
func IsLocalhost(hostname string) bool {
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}
