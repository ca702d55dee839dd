// Package sentiment turns note text into a signed polarity score.
package sentiment

import (
	"strings"
	"unicode"
)

// Normalize converts raw text into lowercase alphabetic tokens with stop-words removed.
// The result is empty, never nil-with-error, when nothing survives.
func Normalize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	expanded := expandContractions(text)
	lowered := strings.ToLower(expanded)
	alphaOnly := stripNonAlpha(lowered)

	fields := strings.Fields(alphaOnly)
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if IsStopWord(token) {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// stripNonAlpha drops every rune that is neither an ASCII letter nor whitespace.
func stripNonAlpha(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || unicode.IsSpace(r) {
			out.WriteRune(r)
		}
	}

	return out.String()
}
