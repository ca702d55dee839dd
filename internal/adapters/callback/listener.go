// Package callback runs the local HTTP endpoint the authorization page redirects to.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/handoff"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// DefaultAddr is where the redirect URI registered with the provider points.
const DefaultAddr = "127.0.0.1:5500"

// ErrAddrInUse wraps the bind error when the address is taken, usually by a
// listener that is already running.
var ErrAddrInUse = errors.New("callback: address already in use")

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><head><title>notetune</title></head>
<body>
<p>{{.}}</p>
<script>window.close();</script>
</body></html>
`))

// Listener serves GET /callback and posts what it receives into a mailbox.
type Listener struct {
	addr    string
	mailbox *handoff.Mailbox
	router  chi.Router

	mu     sync.Mutex
	server *http.Server
	bound  net.Addr
}

// NewListener wires the callback route. Nothing is bound until Start.
func NewListener(addr string, mailbox *handoff.Mailbox) *Listener {
	if addr == "" {
		addr = DefaultAddr
	}
	l := &Listener{
		addr:    addr,
		mailbox: mailbox,
		router:  chi.NewRouter(),
	}
	l.router.Use(chimiddleware.Recoverer)
	l.router.Get("/callback", l.handleCallback)
	return l
}

// ServeHTTP satisfies the http.Handler interface.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.router.ServeHTTP(w, r)
}

// Start binds the address and serves in the background. Bind errors are
// returned synchronously.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAddrInUse, l.addr, err)
	}

	srv := &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 5 * time.Second,
	}
	l.server = srv
	l.bound = ln.Addr()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Str("addr", ln.Addr().String()).Msg("callback listener: serve failed")
		}
	}()

	logging.Info().Str("addr", ln.Addr().String()).Msg("callback listener: listening")
	return nil
}

// Addr returns the bound address once started, the configured one otherwise.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound != nil {
		return l.bound.String()
	}
	return l.addr
}

// Shutdown stops the server if it was started.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	srv := l.server
	l.server = nil
	l.bound = nil
	l.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	switch {
	case code != "":
		l.deliver(handoff.Delivery{Code: code, State: state})
		render(w, http.StatusOK, "Authorization received. You can close this tab.")
	case query.Get("error") != "":
		reason := query.Get("error")
		l.deliver(handoff.Delivery{
			State: state,
			Err:   fmt.Errorf("%w: %s", domain.ErrAuthorizationDenied, reason),
		})
		render(w, http.StatusOK, "Authorization was not granted ("+reason+"). You can close this tab.")
	default:
		logging.Warn().Str("query", r.URL.RawQuery).Msg("callback listener: request without code")
		render(w, http.StatusBadRequest, "Missing authorization code.")
	}
}

func (l *Listener) deliver(d handoff.Delivery) {
	if err := l.mailbox.Send(d); err != nil {
		logging.Warn().Err(err).Msg("callback listener: delivery dropped, earlier callback still unread")
		return
	}
	logging.Debug().Str("code", logging.Redact(d.Code)).Msg("callback listener: delivery posted")
}

func render(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, message); err != nil {
		logging.Warn().Err(err).Msg("callback listener: failed to write page")
	}
}
