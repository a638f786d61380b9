package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeNFC returns value in Unicode normalization form C. macOS volumes
// hand out decomposed names, so both markers and paths go through here
// before they are compared.
func NormalizeNFC(value string) string {
	if norm.NFC.IsNormalString(value) {
		return value
	}
	return norm.NFC.String(value)
}

// CountOccurrences reports how many non-overlapping times needle occurs in s.
// An empty needle never matches.
func CountOccurrences(s, needle string) int {
	if needle == "" {
		return 0
	}
	return strings.Count(s, needle)
}

// LeadingDigits returns the run of ASCII decimal digits at the start of s.
func LeadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
