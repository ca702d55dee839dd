package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ewilliams-labs/notetune/internal/config"
)

func runAuth(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateAuth(); err != nil {
		return err
	}

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startListener(); err != nil {
		return err
	}
	defer a.listener.Shutdown(context.Background())

	fmt.Fprintf(os.Stdout, "Waiting up to %s for authorization. Press Ctrl-C to cancel.\n", cfg.Auth.Timeout)

	att, err := a.authorizer.Authenticate(ctx)
	for _, notice := range att.Notices {
		fmt.Fprintln(os.Stderr, "notice:", notice)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Authorized. The access token has been saved.")
	return nil
}
