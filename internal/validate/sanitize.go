package validate

import (
	"strings"
	"unicode"
)

// SanitizeTodoText trims a todo and folds line breaks and control
// characters into single spaces.
func SanitizeTodoText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	space := false
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteRune(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// StripControlChars removes all control characters from a string.
func StripControlChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
