package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/handoff"
	"github.com/ewilliams-labs/notetune/internal/core/ports"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// DefaultAuthTimeout bounds how long an attempt waits for the redirect.
const DefaultAuthTimeout = 5 * time.Minute

// ErrAttemptNotFound is returned for ids that are not the outstanding attempt.
var ErrAttemptNotFound = errors.New("service: authorization attempt not found")

// Attempt describes an outstanding authorization.
type Attempt struct {
	ID           string
	AuthorizeURL string
	Notices      []string
}

// AttemptStatus is the lifecycle state reported for an attempt.
type AttemptStatus string

const (
	StatusPending   AttemptStatus = "pending"
	StatusSucceeded AttemptStatus = "succeeded"
	StatusFailed    AttemptStatus = "failed"
)

// Outcome is what is known about an attempt. Err is set when Status is
// StatusFailed.
type Outcome struct {
	AttemptID string
	Status    AttemptStatus
	Err       error
}

type attempt struct {
	id     string
	state  string
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Authorizer drives one authorization at a time: open the provider page, wait
// for the callback delivery, exchange the code and store the token.
type Authorizer struct {
	oauth    ports.OAuthProvider
	settings ports.SettingsStore
	browser  ports.BrowserOpener
	mailbox  *handoff.Mailbox
	timeout  time.Duration

	mu     sync.Mutex
	active *attempt
	last   *Outcome
}

// NewAuthorizer constructs an Authorizer. browser may be nil, in which case the
// URL is only returned.
func NewAuthorizer(oauth ports.OAuthProvider, settings ports.SettingsStore, browser ports.BrowserOpener, mailbox *handoff.Mailbox, timeout time.Duration) *Authorizer {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}
	return &Authorizer{
		oauth:    oauth,
		settings: settings,
		browser:  browser,
		mailbox:  mailbox,
		timeout:  timeout,
	}
}

// Begin starts an attempt and opens the authorization page. It fails with
// domain.ErrAuthorizationInProgress while another attempt is outstanding.
func (a *Authorizer) Begin() (Attempt, error) {
	a.mu.Lock()
	if a.active != nil {
		a.mu.Unlock()
		return Attempt{}, domain.ErrAuthorizationInProgress
	}

	if a.mailbox.Clear() {
		logging.Warn().Msg("authorizer: dropped stale callback from an earlier attempt")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	att := &attempt{
		id:     uuid.NewString(),
		state:  uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}
	a.active = att
	a.mu.Unlock()

	out := Attempt{
		ID:           att.id,
		AuthorizeURL: a.oauth.AuthCodeURL(att.state),
	}

	if a.browser != nil {
		if err := a.browser.Open(out.AuthorizeURL); err != nil {
			logging.Warn().Err(err).Str("attempt", att.id).Msg("authorizer: could not open browser, open the URL manually")
			out.Notices = append(out.Notices, fmt.Sprintf("could not open browser: %v", err))
		}
	}

	logging.Info().Str("attempt", att.id).Msg("authorizer: waiting for callback")
	return out, nil
}

// Await waits for the callback of attempt id, bounded by the configured
// timeout, then exchanges the code and saves the token. Deliveries carrying a
// different state are discarded. Cancelling ctx or calling Cancel ends the
// wait with domain.ErrAuthorizationCanceled.
func (a *Authorizer) Await(ctx context.Context, id string) (err error) {
	att, err := a.lookup(id)
	if err != nil {
		return err
	}
	defer func() { a.finish(att, err) }()

	waitCtx, cancel := context.WithTimeout(att.ctx, a.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		att.cancel(fmt.Errorf("%w: %w", domain.ErrAuthorizationCanceled, context.Cause(ctx)))
	})
	defer stop()

	var code string
	for code == "" {
		d, err := a.mailbox.Receive(waitCtx)
		if err != nil {
			if cause := context.Cause(att.ctx); cause != nil {
				return cause
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", domain.ErrAuthorizationTimedOut, a.timeout)
			}
			return err
		}

		if d.State != att.state {
			logging.Warn().Str("attempt", att.id).Msg("authorizer: discarded callback with foreign state")
			continue
		}
		if d.Err != nil {
			return d.Err
		}
		code = d.Code
	}

	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		logging.Error().Err(err).Str("attempt", att.id).Msg("authorizer: token exchange failed")
		return err
	}

	settings, err := a.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("service: failed to load settings: %w", err)
	}
	settings.AccessToken = token
	if err := a.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("service: failed to save settings: %w", err)
	}

	logging.Info().Str("attempt", att.id).Str("token", logging.Redact(token)).Msg("authorizer: access token stored")
	return nil
}

// Authenticate runs Begin and Await back to back.
func (a *Authorizer) Authenticate(ctx context.Context) (Attempt, error) {
	att, err := a.Begin()
	if err != nil {
		return Attempt{}, err
	}
	return att, a.Await(ctx, att.ID)
}

// Cancel ends the outstanding attempt, as when the user dismisses the dialog.
func (a *Authorizer) Cancel(id string) error {
	att, err := a.lookup(id)
	if err != nil {
		return err
	}
	att.cancel(domain.ErrAuthorizationCanceled)
	// Await may never have been called.
	a.finish(att, domain.ErrAuthorizationCanceled)
	return nil
}

// Pending reports whether an attempt is outstanding.
func (a *Authorizer) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != nil
}

// Status reports the outcome of attempt id. Only the outstanding attempt and
// the most recently finished one are known.
func (a *Authorizer) Status(id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != nil && a.active.id == id {
		return Outcome{AttemptID: id, Status: StatusPending}, nil
	}
	if a.last != nil && a.last.AttemptID == id {
		return *a.last, nil
	}
	return Outcome{}, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
}

func (a *Authorizer) lookup(id string) (*attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil || a.active.id != id {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return a.active, nil
}

// finish clears att and records its outcome. Only the first call for an
// attempt is recorded.
func (a *Authorizer) finish(att *attempt, err error) {
	att.cancel(nil)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != att {
		return
	}
	a.active = nil
	out := &Outcome{AttemptID: att.id, Status: StatusSucceeded}
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
	}
	a.last = out
}
