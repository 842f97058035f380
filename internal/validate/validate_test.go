package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manav03panchal/tidytodo/internal/errors"
)

// =============================================================================
// TodoText Tests
// =============================================================================

func TestTodoText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"simple", "buy milk", false},
		{"unicode", "café ☕", false},
		{"max_length", strings.Repeat("a", MaxTodoLength), false},
		{"empty", "", true},
		{"whitespace", "   \t", true},
		{"too_long", strings.Repeat("a", MaxTodoLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TodoText(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsUserError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, TodoText(""), errors.ErrEmptyTodo)
}

// =============================================================================
// Username / Email Tests
// =============================================================================

func TestUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "emilys", false},
		{"with_dot", "ann.lee", false},
		{"with_dash", "ann-lee_2", false},
		{"empty", "", true},
		{"too_long", strings.Repeat("a", MaxUsernameLength+1), true},
		{"starts_with_dash", "-ann", true},
		{"with_space", "ann lee", true},
		{"with_at", "ann@lee", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email(""))
	assert.NoError(t, Email("ann@example.com"))
	assert.Error(t, Email("ann"))
	assert.Error(t, Email("@example.com"))
	assert.Error(t, Email("ann@localhost"))
	assert.Error(t, Email("ann lee@example.com"))
}

// =============================================================================
// TimeoutMinutes / TodoID Tests
// =============================================================================

func TestTimeoutMinutes(t *testing.T) {
	allowed := []int{5, 10, 15, 30, 60}
	for _, m := range allowed {
		assert.NoError(t, TimeoutMinutes(m, allowed))
	}
	for _, m := range []int{0, 1, 7, 61} {
		err := TimeoutMinutes(m, allowed)
		assert.ErrorIs(t, err, errors.ErrInvalidTimeout)
		assert.Contains(t, errors.GetSuggestion(err), "[5 10 15 30 60]")
	}
}

func TestTodoID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"#1700000000000", 1700000000000, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := TodoID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidTodoID)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

// =============================================================================
// BaseURL Tests
// =============================================================================

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://dummyjson.com", false},
		{"https_with_path", "https://example.com/api", false},
		{"localhost_http", "http://localhost:8088", false},
		{"loopback_http", "http://127.0.0.1:8088", false},
		{"empty", "", true},
		{"external_http", "http://dummyjson.com", true},
		{"ftp", "ftp://example.com", true},
		{"no_host", "https://", true},
		{"query", "https://example.com?x=1", true},
		{"too_long", "https://example.com/" + strings.Repeat("a", MaxURLLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, BaseURL("ftp://example.com"), errors.ErrInvalidURL)
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, IsLocalhost("localhost"))
	assert.True(t, IsLocalhost("::1"))
	assert.False(t, IsLocalhost("example.com"))
}

// =============================================================================
// Sanitize Tests
// =============================================================================

func TestSanitizeTodoText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"buy milk", "buy milk"},
		{"  padded  ", "padded"},
		{"line\r\nbreak", "line break"},
		{"tab\tand\x00null", "tab and null"},
		{"many    spaces", "many spaces"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTodoText(tt.input))
		})
	}
}

func TestStripControlChars(t *testing.T) {
	assert.Equal(t, "ab\nc\td", StripControlChars("a\x1bb\nc\td\x07"))
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
		{"ééééé", 4, "é..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.input, tt.maxLen))
		})
	}
}
