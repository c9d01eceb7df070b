package quote

import (
	"sync"
	"time"
)

// Remaining converts an absolute expiry timestamp (seconds since epoch) into
// whole seconds left, never negative. Recomputing from the wall clock keeps
// the countdown correct across timer drift.
func Remaining(expiry int64, now time.Time) int64 {
	left := (expiry*1000 - now.UnixMilli()) / 1000
	if left < 0 {
		return 0
	}
	return left
}

// Countdown ticks the seconds remaining until a quote expiry and fires the
// expiry callback exactly once when it reaches zero. Restartable: Start with
// a new expiry replaces the previous run.
type Countdown struct {
	onTick   func(remaining int64)
	onExpire func()

	interval time.Duration
	now      func() time.Time
	ticks    <-chan time.Time // test hook; nil means use a real ticker

	mu    sync.Mutex
	stopc chan struct{}
}

// NewCountdown creates a countdown ticking once per second.
func NewCountdown(onTick func(int64), onExpire func()) *Countdown {
	return &Countdown{
		onTick:   onTick,
		onExpire: onExpire,
		interval: time.Second,
		now:      time.Now,
	}
}

// Start begins (or restarts) the countdown toward the given expiry
// timestamp. The first tick is reported immediately.
func (c *Countdown) Start(expiry int64) {
	c.mu.Lock()
	if c.stopc != nil {
		close(c.stopc)
	}
	stopc := make(chan struct{})
	c.stopc = stopc
	c.mu.Unlock()

	go c.run(expiry, stopc)
}

// Stop halts the countdown without firing the expiry callback.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopc != nil {
		close(c.stopc)
		c.stopc = nil
	}
}

func (c *Countdown) run(expiry int64, stopc chan struct{}) {
	var tickc <-chan time.Time
	if c.ticks != nil {
		tickc = c.ticks
	} else {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tickc = ticker.C
	}

	for {
		remaining := Remaining(expiry, c.now())
		if c.onTick != nil {
			c.onTick(remaining)
		}
		if remaining == 0 {
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}

		select {
		case <-stopc:
			return
		case <-tickc:
		}
	}
}
