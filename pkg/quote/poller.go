package quote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"omniswap/pkg/types"
)

const (
	// DefaultPollInterval is the fixed cadence of status polling.
	DefaultPollInterval = 2 * time.Second
	// DefaultPollAttempts bounds total polling so a backend that never
	// reaches a terminal state cannot keep the poller alive forever.
	DefaultPollAttempts = 150
	// defaultPollErrorBudget is the number of consecutive fetch failures
	// tolerated before the poller gives up.
	defaultPollErrorBudget = 3
)

// StatusFunc fetches the execution status for a quote id.
type StatusFunc func(ctx context.Context, quoteID string) (*types.QuoteStatus, error)

// Poller repeatedly fetches execution status at a fixed interval until a
// terminal status is reached. Each response fully replaces the previous one.
type Poller struct {
	fetch       StatusFunc
	interval    time.Duration
	maxAttempts int
	errorBudget int
	onUpdate    func(*types.QuoteStatus)
	onComplete  func(*types.QuoteStatus)

	completeOnce sync.Once
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the polling cadence.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithMaxAttempts bounds the total number of polls.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) { p.maxAttempts = n }
}

// WithOnUpdate registers a callback invoked with every status response.
func WithOnUpdate(fn func(*types.QuoteStatus)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

// WithPollerOnComplete registers a callback invoked once, on the first terminal
// status, even if a terminal status is observed again.
func WithPollerOnComplete(fn func(*types.QuoteStatus)) PollerOption {
	return func(p *Poller) { p.onComplete = fn }
}

// NewPoller creates a status poller.
func NewPoller(fetch StatusFunc, opts ...PollerOption) *Poller {
	p := &Poller{
		fetch:       fetch,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultPollAttempts,
		errorBudget: defaultPollErrorBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until a terminal status, the attempt bound, the error budget, or
// context cancellation. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context, quoteID string) (*types.QuoteStatus, error) {
	consecutiveErrs := 0

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.fetch(ctx, quoteID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			consecutiveErrs++
			if consecutiveErrs > p.errorBudget {
				return nil, fmt.Errorf("status polling failed: %w", err)
			}
		} else {
			consecutiveErrs = 0
			if p.onUpdate != nil {
				p.onUpdate(status)
			}
			if status.Status.Terminal() {
				p.completeOnce.Do(func() {
					if p.onComplete != nil {
						p.onComplete(status)
					}
				})
				return status, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	return nil, fmt.Errorf("status polling gave up after %d attempts", p.maxAttempts)
}
