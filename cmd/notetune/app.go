package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ewilliams-labs/notetune/internal/adapters/browser"
	"github.com/ewilliams-labs/notetune/internal/adapters/callback"
	"github.com/ewilliams-labs/notetune/internal/adapters/spotify"
	"github.com/ewilliams-labs/notetune/internal/adapters/sqlite"
	"github.com/ewilliams-labs/notetune/internal/config"
	"github.com/ewilliams-labs/notetune/internal/core/handoff"
	"github.com/ewilliams-labs/notetune/internal/core/ports"
	"github.com/ewilliams-labs/notetune/internal/core/sentiment"
	"github.com/ewilliams-labs/notetune/internal/core/services"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// app holds the wired adapters and services shared by every command.
type app struct {
	cfg         *config.Config
	store       *sqlite.Adapter
	mailbox     *handoff.Mailbox
	listener    *callback.Listener
	recommender *services.Recommender
	authorizer  *services.Authorizer
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	store, err := sqlite.NewAdapter(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	moods, err := config.LoadMoods(cfg.Analysis.MoodsPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var overlays []map[string]float64
	if cfg.Analysis.LexiconPath != "" {
		overlay, err := sentiment.LoadLexiconOverlay(cfg.Analysis.LexiconPath)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		overlays = append(overlays, overlay)
	}
	scorer := sentiment.NewScorer(sentiment.DefaultLexicon(), overlays...)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	media := spotify.NewClient(httpClient, cfg.Spotify.APIURL)
	oauth := spotify.NewAuthenticator(httpClient, spotify.AuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURI,
		AccountsURL:  cfg.Spotify.AccountsURL,
	})

	var opener ports.BrowserOpener = browser.NewPrinter(out)
	if cfg.Auth.OpenBrowser {
		opener = fallbackOpener{primary: browser.NewOpener(), fallback: browser.NewPrinter(out)}
	}

	mailbox := handoff.NewMailbox()

	return &app{
		cfg:         cfg,
		store:       store,
		mailbox:     mailbox,
		listener:    callback.NewListener(cfg.Callback.Addr, mailbox),
		recommender: services.NewRecommender(media, store, scorer, moods, cfg.Analysis.Limit),
		authorizer:  services.NewAuthorizer(oauth, store, opener, mailbox, cfg.Auth.Timeout),
	}, nil
}

// startListener binds the callback address. A taken address is assumed to be
// an earlier notetune still listening; the wait is bounded by the auth timeout
// either way.
func (a *app) startListener() error {
	err := a.listener.Start()
	if errors.Is(err, callback.ErrAddrInUse) {
		logging.Warn().Err(err).Msg("notetune: callback address in use, assuming a listener is already running")
		return nil
	}
	return err
}

func (a *app) Close() error {
	return a.store.Close()
}

// fallbackOpener prints the URL when the browser cannot be launched, and still
// reports the failure so it shows up as a notice.
type fallbackOpener struct {
	primary  ports.BrowserOpener
	fallback ports.BrowserOpener
}

func (o fallbackOpener) Open(url string) error {
	err := o.primary.Open(url)
	if err != nil {
		if ferr := o.fallback.Open(url); ferr != nil {
			fmt.Fprintln(os.Stderr, url)
		}
	}
	return err
}
