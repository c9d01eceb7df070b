package quote

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	assert.Equal(t, int64(30), Remaining(1_700_000_030, base))
	assert.Equal(t, int64(1), Remaining(1_700_000_001, base))
	assert.Equal(t, int64(0), Remaining(1_700_000_000, base))
	// Never negative, even long past expiry.
	assert.Equal(t, int64(0), Remaining(1_699_999_000, base))
	// Partial seconds truncate down.
	assert.Equal(t, int64(29), Remaining(1_700_000_030, base.Add(500*time.Millisecond)))
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func recvTick(t *testing.T, ch <-chan int64) int64 {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}

func TestCountdownTicksDownToExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ticks := make(chan time.Time)
	got := make(chan int64, 16)
	expired := make(chan struct{}, 4)

	cd := NewCountdown(
		func(remaining int64) { got <- remaining },
		func() { expired <- struct{}{} },
	)
	cd.now = clock.now
	cd.ticks = ticks

	cd.Start(1003)

	// First tick reports immediately.
	assert.Equal(t, int64(3), recvTick(t, got))

	for _, want := range []int64{2, 1, 0} {
		clock.advance(time.Second)
		ticks <- time.Time{}
		assert.Equal(t, want, recvTick(t, got))
	}

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback never fired")
	}
	// Exactly once.
	assert.Empty(t, expired)
}

func TestCountdownStop(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ticks := make(chan time.Time, 4)
	got := make(chan int64, 16)
	expired := make(chan struct{}, 1)

	cd := NewCountdown(
		func(remaining int64) { got <- remaining },
		func() { expired <- struct{}{} },
	)
	cd.now = clock.now
	cd.ticks = ticks

	cd.Start(1010)
	assert.Equal(t, int64(10), recvTick(t, got))

	cd.Stop()
	clock.advance(20 * time.Second)
	ticks <- time.Time{}

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got)
	assert.Empty(t, expired)
}

func TestCountdownRestartReplacesRun(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ticks := make(chan time.Time, 4)
	got := make(chan int64, 16)

	cd := NewCountdown(func(remaining int64) { got <- remaining }, nil)
	cd.now = clock.now
	cd.ticks = ticks

	cd.Start(1030)
	assert.Equal(t, int64(30), recvTick(t, got))

	// A new quote restarts the countdown toward its own expiry.
	cd.Start(1090)
	assert.Equal(t, int64(90), recvTick(t, got))

	cd.Stop()
}

func TestCountdownStartWithExpiredTimestampFiresImmediately(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	got := make(chan int64, 4)
	expired := make(chan struct{}, 1)

	cd := NewCountdown(
		func(remaining int64) { got <- remaining },
		func() { expired <- struct{}{} },
	)
	cd.now = clock.now

	cd.Start(900)
	assert.Equal(t, int64(0), recvTick(t, got))

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback never fired")
	}
}
