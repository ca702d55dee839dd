package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/handoff"
	"github.com/ewilliams-labs/notetune/internal/core/sentiment"
	"github.com/ewilliams-labs/notetune/internal/core/services"
)

// --- Mocks ---

// The Handler depends on concrete services, so tests build real services
// over mock adapters.

type mockMedia struct {
	history []domain.Track
	recs    []domain.Track
	err     error
}

func (m *mockMedia) RecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]domain.Track, error) {
	return m.history, nil
}

func (m *mockMedia) Recommendations(ctx context.Context, accessToken string, q domain.RecommendationQuery) ([]domain.Track, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

type mockSettings struct {
	mu sync.Mutex
	s  domain.Settings
}

func (m *mockSettings) Load(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *mockSettings) Save(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

type mockOAuth struct {
	exchangeErr error
}

func (mockOAuth) AuthCodeURL(state string) string {
	return "https://accounts.test/authorize?state=" + state
}

func (m mockOAuth) Exchange(ctx context.Context, code string) (string, error) {
	if m.exchangeErr != nil {
		return "", m.exchangeErr
	}
	return "token-for-" + code, nil
}

type fetchError struct{}

func (fetchError) Error() string        { return "media api down" }
func (fetchError) Is(target error) bool { return target == domain.ErrFetchFailed }

func newTestHandler(t *testing.T, media *mockMedia, settings *mockSettings) (*Handler, *handoff.Mailbox) {
	return newTestHandlerWithOptions(t, media, settings, Options{})
}

func newTestHandlerWithOptions(t *testing.T, media *mockMedia, settings *mockSettings, opts Options) (*Handler, *handoff.Mailbox) {
	t.Helper()
	return buildTestHandler(t, media, settings, mockOAuth{}, opts)
}

func buildTestHandler(t *testing.T, media *mockMedia, settings *mockSettings, oauth mockOAuth, opts Options) (*Handler, *handoff.Mailbox) {
	t.Helper()
	moods, err := domain.NewMoodTable([]domain.MoodRange{
		{Label: "sad", Min: -10, Max: -0.01},
		{Label: "happy", Min: 0.01, Max: 10},
	})
	if err != nil {
		t.Fatalf("mood table: %v", err)
	}
	scorer := sentiment.NewScorer(map[string]float64{"great": 3, "awful": -3})
	mailbox := handoff.NewMailbox()

	rec := services.NewRecommender(media, settings, scorer, moods, 10)
	auth := services.NewAuthorizer(oauth, settings, nil, mailbox, time.Second)
	h := NewHandler(rec, auth, settings, opts)
	t.Cleanup(h.Close)
	return h, mailbox
}

// --- Tests ---

func TestHandler_HealthCheck(t *testing.T) {
	h, _ := newTestHandler(t, &mockMedia{}, &mockSettings{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandler_AnalyzeNote(t *testing.T) {
	tracks := []domain.Track{{ID: "r1", Title: "Song", Artist: "Band"}}

	tests := []struct {
		name           string
		body           string
		contentType    string
		token          string
		mediaErr       error
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:           "Success: mood and tracks",
			body:           `{"text": "what a great day"}`,
			contentType:    "application/json",
			token:          "tok",
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"mood":"happy"`, `"seed_track_id":"seed"`, `"id":"r1"`, `"score":3`},
		},
		{
			name:           "Empty text is analysed, not rejected",
			body:           `{"text": ""}`,
			contentType:    "application/json",
			token:          "tok",
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"score":0`, `no sentiment signal`},
		},
		{
			name:           "No token returns partial analysis",
			body:           `{"text": "awful"}`,
			contentType:    "application/json",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   []string{`"code":"NO_ACCESS_TOKEN"`, `"mood":"sad"`},
		},
		{
			name:           "Media failure is a bad gateway",
			body:           `{"text": "great"}`,
			contentType:    "application/json",
			token:          "tok",
			mediaErr:       fetchError{},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   []string{`"code":"FETCH_FAILED"`, `"mood":"happy"`},
		},
		{
			name:           "Wrong content type",
			body:           `{"text": "great"}`,
			contentType:    "text/plain",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "Malformed body",
			body:           `{"text":`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"Invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &mockMedia{history: []domain.Track{{ID: "seed"}}, recs: tracks, err: tt.mediaErr}
			h, _ := newTestHandler(t, media, &mockSettings{s: domain.Settings{AccessToken: tt.token}})

			req := httptest.NewRequest(http.MethodPost, "/commands/analyze", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, strings.TrimSpace(rec.Body.String()))
			}
			for _, want := range tt.expectedBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("expected body to contain %q, got %q", want, rec.Body.String())
				}
			}
		})
	}
}

func TestHandler_AuthenticateFlow(t *testing.T) {
	settings := &mockSettings{}
	h, mailbox := newTestHandler(t, &mockMedia{}, settings)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var begun beginAuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &begun); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if begun.AttemptID == "" || !strings.Contains(begun.AuthorizeURL, "state=") {
		t.Fatalf("unexpected response %+v", begun)
	}

	// A second attempt is rejected while the first is outstanding.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	state := begun.AuthorizeURL[strings.Index(begun.AuthorizeURL, "state=")+len("state="):]
	if err := mailbox.Send(handoff.Delivery{Code: "XYZ", State: state}); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		s, _ := settings.Load(context.Background())
		if s.AccessToken == "token-for-XYZ" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("token not stored, settings: %+v", s)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/token", nil))
	if !strings.Contains(rec.Body.String(), `"authorized":true`) {
		t.Errorf("expected authorized, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "token-for-XYZ") {
		t.Error("token must not be echoed")
	}

	got := awaitAttemptStatus(t, h, "/commands/authenticate/"+begun.AttemptID)
	if got.Status != "succeeded" || got.Code != "" {
		t.Errorf("expected succeeded without code, got %+v", got)
	}
}

func TestHandler_AttemptStatusReportsFailure(t *testing.T) {
	tests := []struct {
		name        string
		oauth       mockOAuth
		delivery    func(state string) handoff.Delivery
		expectedErr string
		code        string
	}{
		{
			name:  "Denied by the user",
			oauth: mockOAuth{},
			delivery: func(state string) handoff.Delivery {
				return handoff.Delivery{State: state, Err: fmt.Errorf("%w: access_denied", domain.ErrAuthorizationDenied)}
			},
			expectedErr: "access_denied",
			code:        errCodeAuthDenied,
		},
		{
			name:  "Code exchange rejected",
			oauth: mockOAuth{exchangeErr: fmt.Errorf("%w: invalid_grant", domain.ErrTokenExchange)},
			delivery: func(state string) handoff.Delivery {
				return handoff.Delivery{Code: "XYZ", State: state}
			},
			expectedErr: "invalid_grant",
			code:        errCodeTokenExchange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &mockSettings{}
			h, mailbox := buildTestHandler(t, &mockMedia{}, settings, tt.oauth, Options{})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
			if rec.Code != http.StatusAccepted {
				t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
			}
			location := rec.Header().Get("Location")

			var begun beginAuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &begun); err != nil {
				t.Fatalf("decode: %v", err)
			}
			state := begun.AuthorizeURL[strings.Index(begun.AuthorizeURL, "state=")+len("state="):]
			if err := mailbox.Send(tt.delivery(state)); err != nil {
				t.Fatalf("send: %v", err)
			}

			got := awaitAttemptStatus(t, h, location)
			if got.Status != "failed" {
				t.Fatalf("expected failed, got %+v", got)
			}
			if got.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got.Code)
			}
			if !strings.Contains(got.Error, tt.expectedErr) {
				t.Errorf("expected error to mention %q, got %q", tt.expectedErr, got.Error)
			}

			s, _ := settings.Load(context.Background())
			if s.Authorized() {
				t.Error("no token should be stored after a failed attempt")
			}
		})
	}
}

func TestHandler_AttemptStatusAfterCancel(t *testing.T) {
	h, _ := newTestHandler(t, &mockMedia{}, &mockSettings{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands/authenticate/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown attempt, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
	location := rec.Header().Get("Location")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, location, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	got := awaitAttemptStatus(t, h, location)
	if got.Status != "failed" || got.Code != errCodeAuthCanceled {
		t.Errorf("expected canceled failure, got %+v", got)
	}
}

// awaitAttemptStatus polls location until the attempt leaves pending.
func awaitAttemptStatus(t *testing.T, h *Handler, location string) attemptStatusResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, location, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", location, rec.Code, rec.Body.String())
		}
		var got attemptStatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != "pending" {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("attempt still pending at %s", location)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_CancelAuthentication(t *testing.T) {
	h, _ := newTestHandler(t, &mockMedia{}, &mockSettings{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/commands/authenticate/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown attempt, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
	var begun beginAuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &begun); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/commands/authenticate/"+begun.AttemptID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/authenticate", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected a new attempt after cancel, got %d", rec.Code)
	}
}

func TestHandler_AnalyzeRateLimit(t *testing.T) {
	media := &mockMedia{recs: []domain.Track{{ID: "r1"}}}
	h, _ := newTestHandlerWithOptions(t, media, &mockSettings{s: domain.Settings{AccessToken: "tok"}}, Options{AnalyzePerMinute: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/commands/analyze", bytes.NewBufferString(`{"text": "great"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %d", codes[2])
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, &mockMedia{}, &mockSettings{})

	req := httptest.NewRequest(http.MethodOptions, "/commands/analyze", nil)
	req.Header.Set("Origin", "app://obsidian.md")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "app://obsidian.md" {
		t.Errorf("expected origin to be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/commands/analyze", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
