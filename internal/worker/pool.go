// Package worker analyses batches of notes in the background.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/logging"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("worker: queue full")

// Analyzer runs the note pipeline. *services.Recommender satisfies it.
type Analyzer interface {
	AnalyzeNote(ctx context.Context, text string) (domain.Analysis, error)
}

// Job is one note to analyse.
type Job struct {
	Index int
	Name  string
	Text  string
}

// Result pairs a job with its analysis. Analysis may be partial when Err is set.
type Result struct {
	Job      Job
	Analysis domain.Analysis
	Err      error
}

// Pool manages background workers for note analysis.
type Pool struct {
	analyzer Analyzer
	jobs     chan Job
	results  chan Result
	wg       sync.WaitGroup
}

// NewPool creates a pool whose queue and result buffer hold queueSize entries.
func NewPool(analyzer Analyzer, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		analyzer: analyzer,
		jobs:     make(chan Job, queueSize),
		results:  make(chan Result, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- p.process(ctx, job)
			}
		}()
	}
}

// Stop closes the queue, waits for workers to finish and closes Results.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// Results delivers one Result per processed job. Read it while the pool runs
// if more jobs than the buffer holds are submitted.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		logging.Warn().Str("note", job.Name).Msg("worker: dropping job, queue full")
		return ErrQueueFull
	}
}

func (p *Pool) process(ctx context.Context, job Job) Result {
	if err := ctx.Err(); err != nil {
		return Result{Job: job, Err: err}
	}
	analysis, err := p.analyzer.AnalyzeNote(ctx, job.Text)
	if err != nil {
		logging.Warn().Err(err).Str("note", job.Name).Msg("worker: analysis incomplete")
	} else {
		logging.Debug().Str("note", job.Name).Str("mood", analysis.Mood).Msg("worker: note analysed")
	}
	return Result{Job: job, Analysis: analysis, Err: err}
}

// AnalyzeAll runs every job through a pool of workers and returns the results
// in job order.
func AnalyzeAll(ctx context.Context, analyzer Analyzer, workers int, jobs []Job) []Result {
	pool := NewPool(analyzer, len(jobs))
	pool.Start(ctx, workers)

	for i, job := range jobs {
		job.Index = i
		if err := pool.Submit(job); err != nil {
			// The queue is sized for every job, so this only happens on misuse.
			pool.results <- Result{Job: job, Err: err}
		}
	}
	pool.Stop()

	out := make([]Result, len(jobs))
	for res := range pool.Results() {
		out[res.Job.Index] = res
	}
	return out
}
