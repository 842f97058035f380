package logging

import (
	"strings"
	"testing"
)

// FuzzMaskValue checks that masked values contain only mask characters.
// Run with: go test ./internal/logging -fuzz=FuzzMaskValue -fuzztime=30s
func FuzzMaskValue(f *testing.F) {
	for _, seed := range []string{"secret123", "mock_token_0f8c", "", "a", string(make([]byte, 10000))} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		masked := MaskValue(input)
		if strings.Trim(masked, MaskChar) != "" || len(masked) > 8*len(MaskChar) {
			t.Fatalf("MaskValue(%q) = %q", input, masked)
		}
	})
}
