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

// RecentlyPlayed returns the caller's play history, most recent first.
// An empty history is an empty slice, not an error.
func (c *Client) RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.Track, error) {
	recentURL, err := url.Parse(c.baseURL + "/me/player/recently-played")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid recently-played url: %w", err)
	}
	if limit > 0 {
		query := recentURL.Query()
		query.Set("limit", strconv.Itoa(limit))
		recentURL.RawQuery = query.Encode()
	}

	logging.Debug().Str("url", recentURL.String()).Msg("spotify adapter: recently-played request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recentURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to create recently-played request: %w", err)
	}

	resp, err := do(c.authorized(ctx, accessToken), "recently-played", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body recentlyPlayedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify adapter: recently-played decode error: %w: %w", domain.ErrFetchFailed, err)
	}

	tracks := make([]domain.Track, 0, len(body.Items))
	for _, item := range body.Items {
		tracks = append(tracks, mapTrackToDomain(item.Track))
	}

	return tracks, nil
}
