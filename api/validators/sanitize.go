package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text query
// input at maxLen runes so search terms cannot balloon SQL LIKE patterns.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}
