package spotify

import (
	"strings"
	"unicode"
)

// normalizeGenreSeed turns a mood label into Spotify's genre seed form:
// lowercase words joined by hyphens, e.g. "Hip Hop" -> "hip-hop".
func normalizeGenreSeed(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	lower := strings.ToLower(input)
	return strings.Join(strings.Fields(cleanSeparators(lower)), "-")
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}
