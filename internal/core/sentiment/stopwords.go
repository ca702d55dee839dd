package sentiment

// stopWords is the fixed English stop-word set removed after tokenization.
// Negations are kept out of it on purpose so "not" and "no" survive.
var stopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "another", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "came", "can", "come",
	"could", "did", "do", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "get", "got", "had", "has", "have", "having", "he", "her",
	"here", "hers", "herself", "him", "himself", "his", "how", "i", "if", "in",
	"into", "is", "it", "its", "itself", "just", "like", "make", "many", "me",
	"might", "more", "most", "much", "must", "my", "myself", "now", "of", "off",
	"on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over",
	"own", "said", "same", "see", "shall", "she", "should", "since", "so", "some",
	"still", "such", "take", "than", "that", "the", "their", "theirs", "them", "themselves",
	"then", "there", "these", "they", "this", "those", "through", "to", "too", "under",
	"until", "up", "us", "very", "was", "way", "we", "well", "were", "what",
	"when", "where", "which", "while", "who", "whom", "why", "will", "with", "would",
	"you", "your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether token is removed by Normalize.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
