package sentiment

import (
	"regexp"
	"strings"
)

var contractionPattern = regexp.MustCompile(`(?i)\b[a-z]+['’][a-z]+\b`)

// contractions holds forms whose expansion cannot be derived from the suffix rules.
var contractions = map[string]string{
	"ain't":   "is not",
	"can't":   "can not",
	"shan't":  "shall not",
	"won't":   "will not",
	"let's":   "let us",
	"y'all":   "you all",
	"ma'am":   "madam",
	"o'clock": "of the clock",
	"it's":    "it is",
	"he's":    "he is",
	"she's":   "she is",
	"that's":  "that is",
	"there's": "there is",
	"here's":  "here is",
	"what's":  "what is",
	"where's": "where is",
	"who's":   "who is",
	"how's":   "how is",
	"why's":   "why is",
	"when's":  "when is",
}

var contractionSuffixes = []struct {
	suffix    string
	expansion string
}{
	{"n't", " not"},
	{"'re", " are"},
	{"'ve", " have"},
	{"'ll", " will"},
	{"'d", " would"},
	{"'m", " am"},
}

// expandContractions rewrites contracted words to their full lexical form.
// Words that are not contractions (possessives, names) are returned unchanged.
func expandContractions(text string) string {
	return contractionPattern.ReplaceAllStringFunc(text, func(word string) string {
		key := strings.ToLower(strings.ReplaceAll(word, "’", "'"))
		if full, ok := contractions[key]; ok {
			return full
		}
		for _, s := range contractionSuffixes {
			if len(key) > len(s.suffix) && strings.HasSuffix(key, s.suffix) {
				return key[:len(key)-len(s.suffix)] + s.expansion
			}
		}
		return word
	})
}
