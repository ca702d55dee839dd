// Package services holds the application use cases: analysing a note into a
// recommendation and authorizing against the media API.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/ports"
	"github.com/ewilliams-labs/notetune/internal/core/sentiment"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// DefaultRecommendationLimit is used when the Recommender is built with a non-positive limit.
const DefaultRecommendationLimit = 20

// Recommender runs the note pipeline: normalize, score, classify, seed, recommend.
type Recommender struct {
	media    ports.MediaProvider
	settings ports.SettingsStore
	scorer   *sentiment.Scorer
	moods    domain.MoodTable
	limit    int
}

// NewRecommender constructs a Recommender.
func NewRecommender(media ports.MediaProvider, settings ports.SettingsStore, scorer *sentiment.Scorer, moods domain.MoodTable, limit int) *Recommender {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	return &Recommender{
		media:    media,
		settings: settings,
		scorer:   scorer,
		moods:    moods,
		limit:    limit,
	}
}

// ResolveSeed returns the id of the most recently played track.
// An empty history yields domain.ErrNoSeed; API failures wrap domain.ErrFetchFailed.
func (r *Recommender) ResolveSeed(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", domain.ErrNoAccessToken
	}
	tracks, err := r.media.RecentlyPlayed(ctx, accessToken, 1)
	if err != nil {
		return "", fmt.Errorf("service: failed to resolve seed: %w", err)
	}
	if len(tracks) == 0 || tracks[0].ID == "" {
		return "", domain.ErrNoSeed
	}
	return tracks[0].ID, nil
}

type seedResult struct {
	id  string
	err error
}

// AnalyzeNote scores text, classifies it and asks the media API for
// recommendations. Non-fatal conditions end up in Analysis.Notices. A missing
// access token or a failed recommendation request is returned as an error
// together with the partial analysis.
func (r *Recommender) AnalyzeNote(ctx context.Context, text string) (domain.Analysis, error) {
	settings, err := r.settings.Load(ctx)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("service: failed to load settings: %w", err)
	}

	// The seed lookup needs only the token, so it runs while the text is scored.
	var seedCh chan seedResult
	if settings.Authorized() {
		seedCh = make(chan seedResult, 1)
		go func() {
			id, err := r.ResolveSeed(ctx, settings.AccessToken)
			seedCh <- seedResult{id: id, err: err}
		}()
	}

	result := r.scorer.Analyze(text)
	analysis := domain.Analysis{
		Score:      result.Score,
		TokenCount: len(result.Tokens),
	}

	if analysis.TokenCount == 0 {
		r.notice(&analysis, domain.ErrEmptyInput)
	} else if mood, ok := r.moods.Classify(analysis.Score); ok {
		analysis.Mood = mood
	} else {
		r.notice(&analysis, fmt.Errorf("%w: %g", domain.ErrNoMood, analysis.Score))
	}

	if seedCh == nil {
		r.notice(&analysis, domain.ErrNoAccessToken)
		return analysis, domain.ErrNoAccessToken
	}

	// Without a seed the request still goes out with the genre and valence.
	if seed := <-seedCh; seed.err == nil {
		analysis.SeedTrackID = seed.id
	} else {
		r.notice(&analysis, seed.err)
	}

	tracks, err := r.media.Recommendations(ctx, settings.AccessToken, domain.RecommendationQuery{
		SeedTrackID:   analysis.SeedTrackID,
		SeedGenre:     analysis.Mood,
		TargetValence: analysis.Score,
		Limit:         r.limit,
	})
	if err != nil {
		err = fmt.Errorf("service: failed to fetch recommendations: %w", err)
		r.notice(&analysis, err)
		return analysis, err
	}
	analysis.Tracks = tracks

	logging.Info().
		Float64("score", analysis.Score).
		Str("mood", analysis.Mood).
		Str("seed", analysis.SeedTrackID).
		Int("tracks", len(tracks)).
		Msg("service: note analysed")

	return analysis, nil
}

func (r *Recommender) notice(a *domain.Analysis, err error) {
	a.AddNotice(err)
	if errors.Is(err, domain.ErrFetchFailed) {
		logging.Warn().Err(err).Msg("service: media api unavailable, continuing")
		return
	}
	logging.Info().Err(err).Msg("service: notice")
}
