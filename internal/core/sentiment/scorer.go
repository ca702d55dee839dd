package sentiment

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"gopkg.in/yaml.v3"
)

var (
	defaultLexicon     map[string]float64
	defaultLexiconOnce sync.Once
)

// DefaultLexicon returns a copy of the VADER word-to-valence table.
func DefaultLexicon() map[string]float64 {
	defaultLexiconOnce.Do(func() {
		sia := govader.NewSentimentIntensityAnalyzer()
		defaultLexicon = make(map[string]float64, len(sia.Lexicon))
		for word, weight := range sia.Lexicon {
			defaultLexicon[strings.ToLower(word)] = weight
		}
	})

	cp := make(map[string]float64, len(defaultLexicon))
	for word, weight := range defaultLexicon {
		cp[word] = weight
	}
	return cp
}

// LoadLexiconOverlay reads a YAML mapping of word to weight.
func LoadLexiconOverlay(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sentiment: read lexicon overlay: %w", err)
	}
	var overlay map[string]float64
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("sentiment: parse lexicon overlay: %w", err)
	}
	return overlay, nil
}

// Scorer sums per-token polarity weights. It is read-only after construction
// and safe for concurrent use.
type Scorer struct {
	lexicon map[string]float64
}

// NewScorer builds a scorer from lexicon, with overlays applied in order.
// Non-finite weights are dropped so the score stays finite.
func NewScorer(lexicon map[string]float64, overlays ...map[string]float64) *Scorer {
	merged := make(map[string]float64, len(lexicon))
	for _, table := range append([]map[string]float64{lexicon}, overlays...) {
		for word, weight := range table {
			if math.IsNaN(weight) || math.IsInf(weight, 0) {
				continue
			}
			merged[strings.ToLower(word)] = weight
		}
	}
	return &Scorer{lexicon: merged}
}

// Score returns the sum of the weights of tokens. Unknown tokens count as 0
// and an empty sequence scores 0.
func (s *Scorer) Score(tokens []string) float64 {
	var sum float64
	for _, token := range tokens {
		sum += s.lexicon[token]
	}
	return sum
}

// Result is the scored form of one text.
type Result struct {
	Tokens []string
	Score  float64
}

// Analyze normalizes text and scores the resulting tokens.
func (s *Scorer) Analyze(text string) Result {
	tokens := Normalize(text)
	return Result{Tokens: tokens, Score: s.Score(tokens)}
}
