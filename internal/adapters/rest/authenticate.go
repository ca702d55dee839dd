package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/services"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

const (
	errCodeAuthInProgress = "AUTHORIZATION_IN_PROGRESS"
	errCodeAuthDenied     = "AUTHORIZATION_DENIED"
	errCodeAuthTimedOut   = "AUTHORIZATION_TIMED_OUT"
	errCodeAuthCanceled   = "AUTHORIZATION_CANCELED"
	errCodeTokenExchange  = "TOKEN_EXCHANGE_FAILED"
	errCodeAuthFailed     = "AUTHORIZATION_FAILED"
)

type beginAuthResponse struct {
	AttemptID    string   `json:"attempt_id"`
	AuthorizeURL string   `json:"authorize_url"`
	Notices      []string `json:"notices,omitempty"`
}

type attemptStatusResponse struct {
	AttemptID string `json:"attempt_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

type tokenStatusResponse struct {
	Authorized bool `json:"authorized"`
	Pending    bool `json:"pending"`
}

// BeginAuthentication handles POST /commands/authenticate. The attempt
// completes in the background once the browser is redirected back.
func (h *Handler) BeginAuthentication(w http.ResponseWriter, r *http.Request) {
	att, err := h.authorizer.Begin()
	if err != nil {
		if errors.Is(err, domain.ErrAuthorizationInProgress) {
			writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeAuthInProgress)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go func() {
		if err := h.authorizer.Await(h.background, att.ID); err != nil {
			logging.Warn().Err(err).Str("attempt", att.ID).Msg("rest: authorization did not complete")
			return
		}
		logging.Info().Str("attempt", att.ID).Msg("rest: authorization complete")
	}()

	w.Header().Set("Location", "/commands/authenticate/"+att.ID)
	writeJSON(w, http.StatusAccepted, beginAuthResponse{
		AttemptID:    att.ID,
		AuthorizeURL: att.AuthorizeURL,
		Notices:      att.Notices,
	})
}

// CancelAuthentication handles DELETE /commands/authenticate/{id}.
func (h *Handler) CancelAuthentication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.authorizer.Cancel(id); err != nil {
		if errors.Is(err, services.ErrAttemptNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttemptStatus handles GET /commands/authenticate/{id}. It reports pending,
// succeeded or failed, with a code naming why a failed attempt failed.
func (h *Handler) AttemptStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.authorizer.Status(id)
	if err != nil {
		if errors.Is(err, services.ErrAttemptNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := attemptStatusResponse{
		AttemptID: out.AttemptID,
		Status:    string(out.Status),
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
		resp.Code = authErrorCode(out.Err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func authErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return errCodeAuthDenied
	case errors.Is(err, domain.ErrAuthorizationTimedOut):
		return errCodeAuthTimedOut
	case errors.Is(err, domain.ErrAuthorizationCanceled):
		return errCodeAuthCanceled
	case errors.Is(err, domain.ErrTokenExchange):
		return errCodeTokenExchange
	default:
		return errCodeAuthFailed
	}
}

// TokenStatus handles GET /settings/token. The token itself is never returned.
func (h *Handler) TokenStatus(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenStatusResponse{
		Authorized: settings.Authorized(),
		Pending:    h.authorizer.Pending(),
	})
}
