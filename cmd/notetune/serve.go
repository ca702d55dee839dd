package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ewilliams-labs/notetune/internal/adapters/rest"
	"github.com/ewilliams-labs/notetune/internal/config"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := cfg.ValidateAuth(); err != nil {
		logging.Warn().Err(err).Msg("notetune: authentication will fail until credentials are configured")
	}

	// The listener lives for the whole process.
	if err := a.startListener(); err != nil {
		return err
	}

	handler := rest.NewHandler(a.recommender, a.authorizer, a.store, rest.Options{
		CORSOrigins:      cfg.Server.CORSOrigins,
		AnalyzePerMinute: cfg.Server.AnalyzePerMinute,
	})
	defer handler.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	logging.Info().
		Str("api", cfg.Server.Addr).
		Str("callback", a.listener.Addr()).
		Msg("notetune: serving")

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logging.Info().Msg("notetune: shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("notetune: api shutdown error")
	}
	if err := a.listener.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("notetune: callback listener shutdown error")
	}
	return nil
}
