package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// Recommendations requests tracks for the seeds present in q. target_valence
// is sent as given; range checking is left to the API.
func (c *Client) Recommendations(ctx context.Context, accessToken string, q domain.RecommendationQuery) ([]domain.Track, error) {
	recURL, err := url.Parse(c.baseURL + "/recommendations")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid recommendations url: %w", err)
	}

	query := recURL.Query()
	if q.SeedTrackID != "" {
		query.Set("seed_tracks", q.SeedTrackID)
	}
	if genre := normalizeGenreSeed(q.SeedGenre); genre != "" {
		query.Set("seed_genres", genre)
	}
	query.Set("target_valence", strconv.FormatFloat(q.TargetValence, 'f', -1, 64))
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	recURL.RawQuery = query.Encode()

	logging.Debug().Str("url", recURL.String()).Msg("spotify adapter: recommendations request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to create recommendations request: %w", err)
	}

	resp, err := do(c.authorized(ctx, accessToken), "recommendations", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body recommendationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify adapter: recommendations decode error: %w: %w", domain.ErrFetchFailed, err)
	}

	return mapTracksToDomain(body.Tracks), nil
}
