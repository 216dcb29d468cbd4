package generation

import (
	"context"
	"sync"
	"time"

	"mediastudio/internal/infra"
)

// Runner executes fire-and-forget background units with a bounded number of
// concurrent slots. Work runs against the runner's base context, not the
// submitting request's, so an HTTP request finishing does not cancel its job.
type Runner struct {
	base   context.Context
	sem    chan struct{}
	wg     sync.WaitGroup
	logger infra.Logger
}

// NewRunner creates a runner with the given concurrency limit.
func NewRunner(base context.Context, workers int, logger infra.Logger) *Runner {
	if workers <= 0 {
		workers = 2
	}
	return &Runner{
		base:   base,
		sem:    make(chan struct{}, workers),
		logger: logger,
	}
}

// Go schedules fn without waiting for it. The slot is acquired inside the
// goroutine, so Go itself never blocks the request path.
func (r *Runner) Go(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		select {
		case r.sem <- struct{}{}:
		case <-r.base.Done():
			r.logger.Warn().Msg("runner: shutting down before work could start")
			return
		}
		defer func() { <-r.sem }()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Interface("panic", rec).Msg("runner: background work panicked")
			}
		}()
		fn(r.base)
	}()
}

// Wait blocks until in-flight work drains or the timeout passes.
func (r *Runner) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
