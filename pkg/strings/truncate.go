package strings

import (
	"strings"
)

// DefaultBodyMaxLen is the maximum length of an HTTP response body quoted in error messages.
const DefaultBodyMaxLen = 512

// DefaultIDPrefixLen is how many leading characters of an identifier are shown in logs.
const DefaultIDPrefixLen = 20

// MinTruncateLen is the minimum maxLen value for TruncateDescription.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateDescription truncates a string to maxLen characters and ensures single-line output.
// It collapses all whitespace runs into single spaces and adds "..." if truncated.
// It operates on runes, so multi-byte characters are never split.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// MaskIdentifier returns the first n runes of id followed by "...".
// The suffix is always appended so log readers never mistake the output for the full value.
func MaskIdentifier(id string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(id)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
