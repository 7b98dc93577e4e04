// Package interval runs a function on a period that may change between runs.
package interval

import (
	"context"
	"time"
)

// Never pauses a Loop until it is kicked.
const Never time.Duration = -1

// Loop calls fn every period(). The period is re-read after each call and
// after each Kick, so callers can slow down, speed up or pause the loop
// without restarting it.
type Loop struct {
	fn     func(context.Context)
	period func() time.Duration
	kick   chan struct{}
}

// New builds a Loop. A nil period means Never.
func New(fn func(context.Context), period func() time.Duration) *Loop {
	if period == nil {
		period = func() time.Duration { return Never }
	}
	return &Loop{fn: fn, period: period, kick: make(chan struct{}, 1)}
}

// Kick makes a running Loop re-read its period and restart the wait. It
// never blocks.
func (l *Loop) Kick() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var fire <-chan time.Time
		if d := l.period(); d >= 0 {
			timer.Reset(d)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.kick:
			timer.Stop()
		case <-fire:
			l.fn(ctx)
		}
	}
}
