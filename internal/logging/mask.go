package logging

import (
	"log/slog"
	"strings"
)

// MaskChar is the character used for masking.
const MaskChar = "*"

// mockTokenPrefix starts every token issued to a local account.
const mockTokenPrefix = "mock_token_"

// sensitiveKeywords match attribute keys whose values are never logged.
var sensitiveKeywords = []string{
	"token",
	"password",
	"secret",
	"authorization",
	"bearer",
	"credential",
}

// MaskValue replaces a value with at most eight mask characters.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskToken hides a session token but keeps its kind recognizable in
// debug logs: the Bearer scheme and the local account prefix stay.
func MaskToken(token string) string {
	switch {
	case strings.HasPrefix(token, "Bearer "):
		return "Bearer " + MaskToken(strings.TrimPrefix(token, "Bearer "))
	case strings.HasPrefix(token, mockTokenPrefix):
		return mockTokenPrefix + MaskValue(strings.TrimPrefix(token, mockTokenPrefix))
	default:
		return MaskValue(token)
	}
}

// IsSensitiveField reports whether an attribute key names a secret.
func IsSensitiveField(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func maskAny(v any) string {
	if s, ok := v.(string); ok {
		return MaskToken(s)
	}
	return strings.Repeat(MaskChar, 8)
}

// MaskArgs masks sensitive values in slog arguments: key-value pairs as
// well as slog.Attr values. The input slice is not modified.
func MaskArgs(args []any) []any {
	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result); i++ {
		switch arg := result[i].(type) {
		case slog.Attr:
			if IsSensitiveField(arg.Key) {
				result[i] = slog.String(arg.Key, maskAny(arg.Value.Any()))
			}
		case string:
			if i+1 >= len(result) {
				continue
			}
			if IsSensitiveField(arg) {
				result[i+1] = maskAny(result[i+1])
			}
			i++
		}
	}
	return result
}
