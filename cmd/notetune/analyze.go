package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ewilliams-labs/notetune/internal/config"
	"github.com/ewilliams-labs/notetune/internal/worker"
)

func runAnalyze(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fset := flag.NewFlagSet("analyze", flag.ContinueOnError)
	workers := fset.Int("workers", cfg.Analysis.Workers, "notes analysed concurrently")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() == 0 {
		return errors.New("analyze: at least one FILE is required (\"-\" reads stdin)")
	}

	jobs, err := readNotes(fset.Args(), stdin)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	results := worker.AnalyzeAll(ctx, a.recommender, *workers, jobs)

	failed := 0
	for _, res := range results {
		printResult(stdout, res)
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("analyze: %d of %d notes incomplete", failed, len(results))
	}
	return nil
}

func readNotes(paths []string, stdin io.Reader) ([]worker.Job, error) {
	jobs := make([]worker.Job, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("analyze: read %s: %w", path, err)
		}
		jobs = append(jobs, worker.Job{Name: path, Text: string(data)})
	}
	return jobs, nil
}

func printResult(w io.Writer, res worker.Result) {
	a := res.Analysis
	mood := "-"
	if a.HasMood() {
		mood = a.Mood
	}
	seed := a.SeedTrackID
	if seed == "" {
		seed = "-"
	}

	fmt.Fprintf(w, "== %s\n", res.Job.Name)
	fmt.Fprintf(w, "score %.3f (%d tokens)  mood %s  seed %s\n", a.Score, a.TokenCount, mood, seed)
	for _, notice := range a.Notices {
		fmt.Fprintf(w, "  notice: %s\n", notice)
	}
	if res.Err != nil && !containsNotice(a.Notices, res.Err.Error()) {
		fmt.Fprintf(w, "  error: %v\n", res.Err)
	}

	if len(a.Tracks) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for i, t := range a.Tracks {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s\n", i+1, t.Title, t.Artist, t.URI)
		}
		_ = tw.Flush()
	}
	fmt.Fprintln(w)
}

func containsNotice(notices []string, msg string) bool {
	for _, n := range notices {
		if strings.EqualFold(n, msg) {
			return true
		}
	}
	return false
}
