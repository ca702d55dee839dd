package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

const (
	errCodeNoAccessToken = "NO_ACCESS_TOKEN"
	errCodeFetchFailed   = "FETCH_FAILED"
	errCodeRateLimited   = "RATE_LIMITED"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"max=1000000"`
}

type trackResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	URI        string `json:"uri,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
}

type analysisResponse struct {
	Score       float64         `json:"score"`
	TokenCount  int             `json:"token_count"`
	Mood        string          `json:"mood,omitempty"`
	SeedTrackID string          `json:"seed_track_id,omitempty"`
	Tracks      []trackResponse `json:"tracks"`
	Notices     []string        `json:"notices,omitempty"`
	Error       string          `json:"error,omitempty"`
	Code        string          `json:"code,omitempty"`
}

func toAnalysisResponse(a domain.Analysis) analysisResponse {
	tracks := make([]trackResponse, 0, len(a.Tracks))
	for _, t := range a.Tracks {
		tracks = append(tracks, trackResponse{
			ID:         t.ID,
			Title:      t.Title,
			Artist:     t.Artist,
			Album:      t.Album,
			URI:        t.URI,
			PreviewURL: t.PreviewURL,
			DurationMs: t.DurationMs,
		})
	}
	return analysisResponse{
		Score:       a.Score,
		TokenCount:  a.TokenCount,
		Mood:        a.Mood,
		SeedTrackID: a.SeedTrackID,
		Tracks:      tracks,
		Notices:     a.Notices,
	}
}

// AnalyzeNote handles POST /commands/analyze. An empty text is valid and
// analysed as a note without sentiment signal.
func (h *Handler) AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "text is too long")
		return
	}

	analysis, err := h.recommender.AnalyzeNote(r.Context(), req.Text)
	resp := toAnalysisResponse(analysis)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, domain.ErrNoAccessToken):
		// The partial analysis still carries score and mood.
		resp.Error, resp.Code = err.Error(), errCodeNoAccessToken
		writeJSON(w, http.StatusUnauthorized, resp)
	case errors.Is(err, domain.ErrFetchFailed):
		resp.Error, resp.Code = err.Error(), errCodeFetchFailed
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
