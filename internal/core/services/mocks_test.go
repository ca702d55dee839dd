package services

import (
	"context"
	"net/url"
	"sync"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/handoff"
)

// --- Mocks ---

// mockMedia is not locked: the seed lookup finishes before the
// recommendation request is made.
type mockMedia struct {
	history    []domain.Track
	historyErr error
	recs       []domain.Track
	recsErr    error

	historyCalls int
	queries      []domain.RecommendationQuery
	tokens       []string
}

func (m *mockMedia) RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.Track, error) {
	m.historyCalls++
	m.tokens = append(m.tokens, accessToken)
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockMedia) Recommendations(ctx context.Context, accessToken string, q domain.RecommendationQuery) ([]domain.Track, error) {
	m.queries = append(m.queries, q)
	m.tokens = append(m.tokens, accessToken)
	if m.recsErr != nil {
		return nil, m.recsErr
	}
	return m.recs, nil
}

type memorySettings struct {
	mu       sync.Mutex
	settings domain.Settings
	loadErr  error
	saveErr  error
	saves    int
}

func (m *memorySettings) Load(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Settings{}, m.loadErr
	}
	return m.settings, nil
}

func (m *memorySettings) Save(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = s
	m.saves++
	return nil
}

func (m *memorySettings) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.AccessToken
}

type mockOAuth struct {
	mu    sync.Mutex
	token string
	err   error
	codes []string
}

func (m *mockOAuth) AuthCodeURL(state string) string {
	return "https://accounts.test/authorize?state=" + url.QueryEscape(state)
}

func (m *mockOAuth) Exchange(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func (m *mockOAuth) exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

// fakeBrowser stands in for the human: opening the page triggers onOpen with
// the state parameter taken from the URL.
type fakeBrowser struct {
	err    error
	onOpen func(state string)
}

func (b *fakeBrowser) Open(rawURL string) error {
	if b.err != nil {
		return b.err
	}
	if b.onOpen != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		go b.onOpen(u.Query().Get("state"))
	}
	return nil
}

// redirectWith returns an onOpen hook that posts code with the page's state.
func redirectWith(mailbox *handoff.Mailbox, code string) func(string) {
	return func(state string) {
		_ = mailbox.Send(handoff.Delivery{Code: code, State: state})
	}
}
