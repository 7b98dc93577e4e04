package testsupport

import (
	"sync"
	"time"

	"soundstage/internal/level"
)

// ManualClock is a level.Clock whose tickers fire only when Tick is called.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
	now     time.Time
}

// NewManualClock returns a clock starting at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// NewTicker implements level.Clock.
func (c *ManualClock) NewTicker(d time.Duration) level.Ticker {
	t := &ManualTicker{ch: make(chan time.Time), period: d}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tick delivers one tick to the newest live ticker and returns once it was
// received. It gives up after timeout and reports false.
func (c *ManualClock) Tick(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		t := c.live()
		if t == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		c.mu.Lock()
		c.now = c.now.Add(t.Period())
		now := c.now
		c.mu.Unlock()
		select {
		case t.ch <- now:
			return true
		case <-time.After(5 * time.Millisecond):
		}
	}
	return false
}

// Tickers reports how many tickers were ever created.
func (c *ManualClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Latest returns the most recently created ticker, or nil.
func (c *ManualClock) Latest() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

func (c *ManualClock) live() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.tickers) - 1; i >= 0; i-- {
		if !c.tickers[i].Stopped() {
			return c.tickers[i]
		}
	}
	return nil
}

// ManualTicker is the ticker handed out by ManualClock.
type ManualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	period  time.Duration
	stopped bool
}

func (t *ManualTicker) C() <-chan time.Time { return t.ch }

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *ManualTicker) Reset(d time.Duration) {
	t.mu.Lock()
	t.period = d
	t.stopped = false
	t.mu.Unlock()
}

// Period returns the current tick period.
func (t *ManualTicker) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Stopped reports whether Stop was called since the last Reset.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
