// Package quote owns the quote lifecycle: request, countdown, execution,
// and status polling for one swap form at a time.
package quote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"omniswap/pkg/amount"
	"omniswap/pkg/signer"
	"omniswap/pkg/types"
)

// State of the controller's lifecycle instance.
type State string

const (
	StateIdle       State = "IDLE"
	StateRequesting State = "REQUESTING"
	StateQuoted     State = "QUOTED"
	StateExecuting  State = "EXECUTING"
	StateSubmitted  State = "SUBMITTED"
	StatePolling    State = "POLLING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
	StateRefunded   State = "REFUNDED"
)

var (
	// ErrNoQuote means ExecuteQuote was called with no live quote.
	ErrNoQuote = errors.New("no quote to execute")
	// ErrQuoteExpired means the quote's expiry passed before execution.
	ErrQuoteExpired = errors.New("quote expired")
	// ErrSuperseded means a newer request was issued while this one was in
	// flight; its response was discarded.
	ErrSuperseded = errors.New("quote request superseded")
	// ErrWalletRequired means no signing-capable wallet is available.
	ErrWalletRequired = errors.New("signing wallet not available")
)

// Service is the backend surface the controller drives.
type Service interface {
	SwapQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
	ExecuteQuote(ctx context.Context, signed *types.SignedQuote) error
	ExecutionStatus(ctx context.Context, quoteID string) (*types.QuoteStatus, error)
}

// Input is a validated quote request tuple.
type Input struct {
	FromAsset types.Asset
	ToAsset   types.Asset
	Amount    string // decimal, e.g. "10"
	Recipient string
	Account   types.Account
}

// Reversed swaps the source and target assets and clears the amount, the
// way the direction toggle does.
func (in Input) Reversed() Input {
	out := in
	out.FromAsset, out.ToAsset = in.ToAsset, in.FromAsset
	out.Amount = ""
	return out
}

// Controller owns request/response/error/loading state for one quote
// lifecycle instance. At most one non-terminal quote is live at a time:
// every request carries a monotonic sequence token and responses whose token
// is no longer the latest are discarded.
type Controller struct {
	service Service
	wallet  signer.Wallet
	log     *logrus.Entry
	now     func() time.Time

	pollInterval time.Duration
	pollAttempts int
	reqTimeout   time.Duration

	countdown *Countdown
	debounce  *Debouncer

	onTick     func(remaining int64)
	onQuote    func(*types.Quote)
	onComplete func(*types.QuoteStatus)

	mu          sync.Mutex
	state       State
	input       Input
	quote       *types.Quote
	status      *types.QuoteStatus
	lastErr     error
	seq         uint64
	cancelFetch context.CancelFunc
	completed   bool // one-shot latch for onComplete per lifecycle instance
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(log *logrus.Entry) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithPolling tunes status polling.
func WithPolling(interval time.Duration, maxAttempts int) ControllerOption {
	return func(c *Controller) {
		c.pollInterval = interval
		c.pollAttempts = maxAttempts
	}
}

// WithOnTick registers a countdown display callback.
func WithOnTick(fn func(remaining int64)) ControllerOption {
	return func(c *Controller) { c.onTick = fn }
}

// WithOnQuote registers a callback for every newly accepted quote,
// including expiry re-requests.
func WithOnQuote(fn func(*types.Quote)) ControllerOption {
	return func(c *Controller) { c.onQuote = fn }
}

// WithOnComplete registers the one-time completion callback.
func WithOnComplete(fn func(*types.QuoteStatus)) ControllerOption {
	return func(c *Controller) { c.onComplete = fn }
}

// WithDebounce overrides the debounce delay for ScheduleRequest.
func WithDebounce(delay time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = NewDebouncer(delay) }
}

// NewController creates a quote controller bound to a backend service and a
// signing wallet.
func NewController(service Service, w signer.Wallet, opts ...ControllerOption) *Controller {
	c := &Controller{
		service:      service,
		wallet:       w,
		log:          logrus.NewEntry(logrus.StandardLogger()),
		now:          time.Now,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		reqTimeout:   30 * time.Second,
		debounce:     NewDebouncer(DefaultDebounce),
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.countdown = NewCountdown(c.onTick, c.handleExpiry)
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Quote returns the live quote, if any.
func (c *Controller) Quote() *types.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// Status returns the last polled execution status, if any.
func (c *Controller) Status() *types.QuoteStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the last error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Input returns the parameters of the most recent request.
func (c *Controller) Input() Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// RequestQuote validates the input, calls the quoting endpoint, and replaces
// the live quote on success. A response that arrives after a newer request
// has been issued is discarded and reported as ErrSuperseded.
func (c *Controller) RequestQuote(ctx context.Context, in Input) (*types.Quote, error) {
	if err := c.validateInput(in); err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}

	baseUnits, err := amount.ToBaseUnits(in.Amount, in.FromAsset.Decimals)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	token := c.seq
	if c.cancelFetch != nil {
		// Abort the superseded in-flight request.
		c.cancelFetch()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel
	c.state = StateRequesting
	c.lastErr = nil
	c.input = in
	c.mu.Unlock()

	req := types.QuoteRequest{
		From: types.QuoteOrigin{
			Account:           in.Account,
			AggregatedAssetID: in.FromAsset.AggregatedAssetID,
			Amount:            baseUnits,
		},
		To: types.QuoteDestination{
			AggregatedAssetID: in.ToAsset.AggregatedAssetID,
			Recipient:         in.Recipient,
		},
	}

	q, err := c.service.SwapQuote(reqCtx, req)
	cancel()

	c.mu.Lock()
	if token != c.seq {
		// A newer request owns the state now; this response must not
		// overwrite it.
		c.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		c.state = StateIdle
		c.quote = nil
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}
	c.quote = q
	c.state = StateQuoted
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"quote":   q.ID,
		"expires": q.ExpirationTimestamp,
	}).Debug("quote accepted")

	c.countdown.Start(q.ExpirationTimestamp)
	if c.onQuote != nil {
		c.onQuote(q)
	}
	return q, nil
}

// ScheduleRequest debounces RequestQuote so bursts of input changes collapse
// into a single request. The eventual request is still supersedable.
func (c *Controller) ScheduleRequest(ctx context.Context, in Input) {
	c.debounce.Do(func() {
		_, _ = c.RequestQuote(ctx, in)
	})
}

// ResetQuote clears quote, status, error and loading state unconditionally
// and aborts any in-flight request.
func (c *Controller) ResetQuote() {
	c.countdown.Stop()
	c.debounce.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++ // invalidate any in-flight response
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.state = StateIdle
	c.quote = nil
	c.status = nil
	c.lastErr = nil
	c.completed = false
}

// ToggleDirection swaps source and target assets and clears any in-flight
// quote and amount state.
func (c *Controller) ToggleDirection() Input {
	c.ResetQuote()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = c.input.Reversed()
	return c.input
}

// ExecuteQuote signs every chain operation of the live quote in order,
// submits the signed quote, and polls until a terminal status. An expired
// quote fails fast without touching the signer. On signing or submission
// failure the quote is left in place so the user may retry.
func (c *Controller) ExecuteQuote(ctx context.Context) (*types.QuoteStatus, error) {
	c.mu.Lock()
	q := c.quote
	if q == nil {
		c.mu.Unlock()
		return nil, ErrNoQuote
	}
	if q.Expired(c.now()) {
		c.lastErr = ErrQuoteExpired
		c.mu.Unlock()
		return nil, ErrQuoteExpired
	}
	if c.wallet == nil {
		c.lastErr = ErrWalletRequired
		c.mu.Unlock()
		return nil, ErrWalletRequired
	}
	c.state = StateExecuting
	c.mu.Unlock()

	signed, err := signer.SignQuote(ctx, c.wallet, q)
	if err != nil {
		c.failExecution(q, fmt.Errorf("signing failed: %w", err))
		return nil, err
	}

	if err := c.service.ExecuteQuote(ctx, signed); err != nil {
		c.failExecution(q, err)
		return nil, err
	}

	c.countdown.Stop()
	c.mu.Lock()
	c.state = StateSubmitted
	c.mu.Unlock()
	c.log.WithField("quote", q.ID).Info("quote submitted")

	c.mu.Lock()
	c.state = StatePolling
	c.mu.Unlock()

	poller := NewPoller(c.service.ExecutionStatus,
		WithInterval(c.pollInterval),
		WithMaxAttempts(c.pollAttempts),
		WithOnUpdate(c.replaceStatus),
		WithPollerOnComplete(c.fireComplete),
	)
	status, err := poller.Run(ctx, q.ID)
	if err != nil {
		c.mu.Lock()
		c.state = StateFailed
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	switch status.Status {
	case types.StatusCompleted:
		c.state = StateCompleted
	case types.StatusRefunded:
		c.state = StateRefunded
	default:
		c.state = StateFailed
	}
	c.mu.Unlock()
	return status, nil
}

// failExecution records an execution-path error. The quote stays live while
// it is still valid; an expired quote drops back to idle.
func (c *Controller) failExecution(q *types.Quote, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if c.quote == q && !q.Expired(c.now()) {
		c.state = StateQuoted
		return
	}
	c.state = StateIdle
	c.quote = nil
}

func (c *Controller) replaceStatus(status *types.QuoteStatus) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// fireComplete notifies the caller at most once per lifecycle instance,
// even if a terminal status is observed again.
func (c *Controller) fireComplete(status *types.QuoteStatus) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return
	}
	c.completed = true
	c.mu.Unlock()

	if c.onComplete != nil {
		c.onComplete(status)
	}
}

// handleExpiry re-requests a quote with the same parameters unless the user
// already executed or cancelled.
func (c *Controller) handleExpiry() {
	c.mu.Lock()
	if c.state != StateQuoted {
		c.mu.Unlock()
		return
	}
	in := c.input
	c.mu.Unlock()

	c.log.Debug("quote expired, re-requesting")
	ctx, cancel := context.WithTimeout(context.Background(), c.reqTimeout)
	defer cancel()
	_, _ = c.RequestQuote(ctx, in)
}

func (c *Controller) validateInput(in Input) error {
	if in.Account.SessionAddress == "" {
		return fmt.Errorf("not authenticated: missing session address")
	}
	if c.wallet == nil {
		return ErrWalletRequired
	}
	if in.FromAsset.AggregatedAssetID == "" || in.ToAsset.AggregatedAssetID == "" {
		return fmt.Errorf("asset pair is required")
	}
	if !amount.IsPositive(in.Amount, in.FromAsset.Decimals) {
		return fmt.Errorf("amount must be a positive number with at most %d decimals", in.FromAsset.Decimals)
	}
	return nil
}
