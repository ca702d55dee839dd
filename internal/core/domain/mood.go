package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidMoodTable = errors.New("domain: invalid mood table")

// MoodRange names the inclusive score interval [Min, Max].
type MoodRange struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Contains reports whether score lies inside the range, both ends included.
func (r MoodRange) Contains(score float64) bool {
	return score >= r.Min && score <= r.Max
}

// MoodTable is an ordered list of mood ranges. Ranges may overlap; the range
// declared first wins. Do not sort it.
type MoodTable struct {
	ranges []MoodRange
}

// NewMoodTable validates ranges and returns an immutable table in the given order.
func NewMoodTable(ranges []MoodRange) (MoodTable, error) {
	if len(ranges) == 0 {
		return MoodTable{}, fmt.Errorf("%w: no ranges", ErrInvalidMoodTable)
	}
	for i, r := range ranges {
		if r.Label == "" {
			return MoodTable{}, fmt.Errorf("%w: range %d has no label", ErrInvalidMoodTable, i)
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return MoodTable{}, fmt.Errorf("%w: range %q has NaN bound", ErrInvalidMoodTable, r.Label)
		}
		if r.Min > r.Max {
			return MoodTable{}, fmt.Errorf("%w: range %q has min %v > max %v", ErrInvalidMoodTable, r.Label, r.Min, r.Max)
		}
	}
	cp := make([]MoodRange, len(ranges))
	copy(cp, ranges)
	return MoodTable{ranges: cp}, nil
}

// Classify returns the label of the first range containing score.
// ok is false when no range matches.
func (t MoodTable) Classify(score float64) (label string, ok bool) {
	for _, r := range t.ranges {
		if r.Contains(score) {
			return r.Label, true
		}
	}
	return "", false
}

// Ranges returns a copy of the table in declaration order.
func (t MoodTable) Ranges() []MoodRange {
	cp := make([]MoodRange, len(t.ranges))
	copy(cp, t.ranges)
	return cp
}

// Len returns the number of ranges.
func (t MoodTable) Len() int {
	return len(t.ranges)
}
