package generation

import (
	"context"
	"errors"
	"time"

	"mediastudio/internal/infra"
	"mediastudio/internal/metrics"
	"mediastudio/internal/providers/genai"
)

const (
	defaultPollInterval = 20 * time.Second
	defaultPollMaxWait  = 600 * time.Second
)

// Poller drives one provider-side long-running operation to a terminal state
// or to the maximum wait window. It never declares timeout-as-failure itself:
// on expiry it hands the last-seen state to the materializer, and the absence
// of a result there is what becomes the failure.
type Poller struct {
	client   ProviderClient
	interval time.Duration
	maxWait  time.Duration
	logger   infra.Logger
	metrics  *metrics.Metrics
}

// NewPoller builds a poller. Zero durations fall back to the reference
// behavior of a 20 second interval inside a 600 second window.
func NewPoller(client ProviderClient, interval, maxWait time.Duration, logger infra.Logger, m *metrics.Metrics) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = defaultPollMaxWait
	}
	if m == nil {
		m = metrics.New()
	}
	return &Poller{
		client:   client,
		interval: interval,
		maxWait:  maxWait,
		logger:   logger,
		metrics:  m,
	}
}

// Poll queries the operation until it reports completion or the wait window
// elapses. Intermediate responses may substitute an unusable handle; in that
// case the poller falls back to the original start handle, loudly. Any other
// query failure propagates.
func (p *Poller) Poll(ctx context.Context, start *genai.Operation) (*genai.OperationState, error) {
	deadline := time.Now().Add(p.maxWait)
	handle := start
	var last *genai.OperationState

	for {
		state, err := p.client.GetOperation(ctx, handle)
		if err != nil {
			if errors.Is(err, genai.ErrStaleHandle) && handle != start {
				p.fallbackToOriginal(start)
				handle = start
				continue
			}
			return nil, err
		}
		last = state

		if state.Finished() {
			p.logger.Debug().Str("operation", start.Name).Msg("poller: operation finished")
			return state, nil
		}

		if time.Now().After(deadline) {
			p.logger.Warn().
				Str("operation", start.Name).
				Dur("max_wait", p.maxWait).
				Msg("poller: wait window elapsed without done signal")
			return last, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}

		if state.Handle != nil && state.Handle.Name != "" {
			handle = state.Handle
		} else {
			p.fallbackToOriginal(start)
			handle = start
		}
	}
}

func (p *Poller) fallbackToOriginal(start *genai.Operation) {
	p.metrics.PollFallbacks.Inc()
	p.logger.Warn().
		Str("operation", start.Name).
		Msg("poller: intermediate response lost the operation handle, re-querying with original")
}
