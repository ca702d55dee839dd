package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/ports"
)

// DefaultAccountsURL is the Spotify accounts service root.
const DefaultAccountsURL = "https://accounts.spotify.com"

// DefaultScopes are requested on every authorization.
var DefaultScopes = []string{
	"user-read-email",
	"user-read-recently-played",
	"user-library-read",
	"playlist-read-private",
	"playlist-read-collaborative",
	"app-remote-control",
}

// AuthConfig identifies the application to the accounts service.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccountsURL  string
	Scopes       []string
}

// Authenticator runs the authorization-code grant against the accounts service.
type Authenticator struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

var _ ports.OAuthProvider = (*Authenticator)(nil)

// NewAuthenticator builds an Authenticator. The client secret is sent as HTTP
// Basic auth on the token request.
func NewAuthenticator(httpClient *http.Client, cfg AuthConfig) *Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	accounts := strings.TrimRight(cfg.AccountsURL, "/")
	if accounts == "" {
		accounts = DefaultAccountsURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   accounts + "/authorize",
				TokenURL:  accounts + "/api/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the authorization page for state. show_dialog forces
// the consent screen so a different account can be picked.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for an access token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("spotify adapter: %w: empty code", domain.ErrTokenExchange)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", fmt.Errorf("spotify adapter: %w: status %d: %w", domain.ErrTokenExchange, rerr.Response.StatusCode, err)
		}
		return "", fmt.Errorf("spotify adapter: %w: %w", domain.ErrTokenExchange, err)
	}

	return token.AccessToken, nil
}
