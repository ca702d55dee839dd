// Command notetune turns notes into music recommendations.
//
//	notetune serve            run the callback listener and the command API
//	notetune auth             authorize against Spotify and store the token
//	notetune analyze FILE...  analyse notes ("-" reads stdin)
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ewilliams-labs/notetune/internal/config"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

const usage = `usage: notetune <command> [arguments]

commands:
  serve             run the callback listener and the command API (default)
  auth              authorize against Spotify and store the access token
  analyze FILE...   analyse notes and print recommendations ("-" reads stdin)
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "notetune: failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "notetune: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("notetune: command failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		return runServe(ctx, cfg)
	case "auth", "authenticate":
		return runAuth(ctx, cfg)
	case "analyze", "analyse":
		return runAnalyze(ctx, cfg, args, os.Stdin, os.Stdout)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
