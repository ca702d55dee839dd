package ports

import (
	"context"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

// MediaProvider is the media API used by the recommendation pipeline.
// Every call is authorized with the given bearer token.
type MediaProvider interface {
	RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.Track, error)
	Recommendations(ctx context.Context, accessToken string, q domain.RecommendationQuery) ([]domain.Track, error)
}

// OAuthProvider builds the authorization page URL and exchanges the returned code.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
}
