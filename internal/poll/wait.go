package poll

import (
	"context"
	"fmt"
	"time"

	"soundstage/internal/logging"
)

// WaitSchedule is the back-off table WaitFor sleeps through between checks.
var WaitSchedule = []time.Duration{
	0,
	1 * time.Millisecond,
	2 * time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	20 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
}

// WaitFor checks cond on the WaitSchedule until it reports ok, returning
// its value. It is for local conditions (an element appearing, a script
// global becoming defined) rather than callback queries; use Do for those.
func WaitFor[T any](ctx context.Context, cond func() (T, bool)) (T, error) {
	return waitFor(ctx, WaitSchedule, cond)
}

func waitFor[T any](ctx context.Context, schedule []time.Duration, cond func() (T, bool)) (T, error) {
	var zero T
	start := time.Now()
	for i, wait := range schedule {
		if err := ctx.Err(); err != nil {
			return zero, &Error{Name: "wait", Attempts: i, Elapsed: time.Since(start), Err: ErrCanceled, Cause: context.Cause(ctx)}
		}
		if v, ok := cond(); ok {
			return v, nil
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, &Error{Name: "wait", Attempts: i + 1, Elapsed: time.Since(start), Err: ErrCanceled, Cause: err}
		}
	}
	return zero, &Error{Name: "wait", Attempts: len(schedule), Elapsed: time.Since(start), Err: ErrExhausted}
}

// Step is one stage of a superseding operation.
type Step func(ctx context.Context) error

// Run executes steps in order under a fresh token from tracker. Between
// steps it stops with ErrSuperseded if a newer Run (or Begin) took over;
// the context passed to each step is also canceled at that moment so a
// step blocked in Do gives up promptly.
func Run(ctx context.Context, tracker *Tracker, steps ...Step) error {
	if tracker == nil {
		return fmt.Errorf("run: nil tracker")
	}
	tok := tracker.Begin()
	defer tracker.End(tok)

	runCtx, cancel := tok.Context(ctx)
	defer cancel()
	runCtx = logging.WithOperationID(runCtx, tok.ID())

	for i, step := range steps {
		if step == nil {
			continue
		}
		err := step(runCtx)
		if tok.Canceled() {
			return fmt.Errorf("run step %d: %w", i+1, ErrSuperseded)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
