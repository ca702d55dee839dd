// Package rest exposes the notetune commands over HTTP.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/notetune/internal/core/ports"
	"github.com/ewilliams-labs/notetune/internal/core/services"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// DefaultCORSOrigins are the callers allowed when Options leaves them empty:
// the editor host and local tooling.
var DefaultCORSOrigins = []string{"app://obsidian.md", "http://localhost:*", "http://127.0.0.1:*"}

// Options tunes the middleware stack.
type Options struct {
	CORSOrigins []string
	// AnalyzePerMinute limits analyze calls per client IP. Zero disables the limit.
	AnalyzePerMinute int
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	recommender *services.Recommender
	authorizer  *services.Authorizer
	settings    ports.SettingsStore
	router      chi.Router
	validate    *validator.Validate
	opts        Options

	// background outlives single requests; authorization attempts wait on it.
	background context.Context
	stop       context.CancelFunc
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(recommender *services.Recommender, authorizer *services.Authorizer, settings ports.SettingsStore, opts Options) *Handler {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = DefaultCORSOrigins
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		recommender: recommender,
		authorizer:  authorizer,
		settings:    settings,
		router:      chi.NewRouter(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		opts:        opts,
		background:  ctx,
		stop:        cancel,
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close cancels authorization attempts still waiting in the background.
func (h *Handler) Close() {
	h.stop()
}

func (h *Handler) routes() {
	h.router.Use(chimiddleware.RequestID)
	h.router.Use(chimiddleware.Recoverer)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	h.router.Get("/health", h.HealthCheck)

	h.router.Route("/commands", func(r chi.Router) {
		r.With(h.analyzeLimit()).Post("/analyze", h.AnalyzeNote)
		r.Post("/authenticate", h.BeginAuthentication)
		r.Get("/authenticate/{id}", h.AttemptStatus)
		r.Delete("/authenticate/{id}", h.CancelAuthentication)
	})

	h.router.Get("/settings/token", h.TokenStatus)
}

// analyzeLimit keeps bursts of analyze commands from exhausting the media API quota.
func (h *Handler) analyzeLimit() func(http.Handler) http.Handler {
	if h.opts.AnalyzePerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		h.opts.AnalyzePerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErrorWithCode(w, http.StatusTooManyRequests, "too many analyze requests", errCodeRateLimited)
		}),
	)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn().Err(err).Msg("rest: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}
