package domain

// RecommendationQuery carries the seeds and targets of one recommendation request.
// Empty SeedTrackID or SeedGenre means the seed is absent.
type RecommendationQuery struct {
	SeedTrackID   string
	SeedGenre     string
	TargetValence float64
	Limit         int
}

// Analysis is the outcome of running the pipeline over one note.
type Analysis struct {
	Score       float64
	TokenCount  int
	Mood        string // empty when no range matched
	SeedTrackID string // empty when no seed was available
	Tracks      []Track
	// Notices are the non-fatal conditions met along the way, in the order they occurred.
	Notices []string
}

// HasMood reports whether a mood range matched.
func (a Analysis) HasMood() bool {
	return a.Mood != ""
}

// AddNotice records a non-fatal condition.
func (a *Analysis) AddNotice(err error) {
	if err == nil {
		return
	}
	a.Notices = append(a.Notices, err.Error())
}
