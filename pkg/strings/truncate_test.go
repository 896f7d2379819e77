package strings

import (
	"testing"
)

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string truncated",
			input:    "hello world this is a long string",
			maxLen:   15,
			expected: "hello world ...",
		},
		{
			name:     "json body flattened",
			input:    "{\n  \"error\": \"invalid_client\"\n}",
			maxLen:   100,
			expected: `{ "error": "invalid_client" }`,
		},
		{
			name:     "maxLen clamped to minimum",
			input:    "hello world",
			maxLen:   1,
			expected: "h...",
		},
		{
			name:     "unicode not split",
			input:    "héllo wörld",
			maxLen:   6,
			expected: "hél...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateDescription(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("TruncateDescription(%q, %d) = %q, expected %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestMaskIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"long id", "7f3c9a1e-0b2d-4c5e-8f9a-1b2c3d4e5f60", 20, "7f3c9a1e-0b2d-4c5e-8..."},
		{"short id keeps suffix", "abc", 20, "abc..."},
		{"zero prefix", "secret", 0, "..."},
		{"negative prefix", "secret", -3, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskIdentifier(tt.input, tt.n); got != tt.expected {
				t.Errorf("MaskIdentifier(%q, %d) = %q, expected %q", tt.input, tt.n, got, tt.expected)
			}
		})
	}
}
