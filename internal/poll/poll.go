package poll

import (
	"context"
	"errors"
	"time"

	"soundstage/internal/logging"
)

// Request issues one external query. It must return promptly and deliver
// the result, if ever, through reply. reply may be called zero or more
// times, from any goroutine, at any delay; only the first call within an
// attempt's receive window counts. A returned error is an unexpected
// failure of the request itself.
type Request[T any] func(reply func(T)) error

// Do turns an unreliable callback-style query into a bounded, cancellable
// call. For each attempt it checks the cancel predicate, issues the request,
// waits up to the receive timeout for a reply, and returns the first reply
// the accept predicate approves. Attempt starts are spaced at least one
// interval apart. After the last attempt it fails with ErrExhausted.
func Do[T any](ctx context.Context, issue Request[T], opts ...Option) (T, error) {
	var zero T
	if issue == nil {
		return zero, errors.New("poll: nil request")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := newSettings(opts)
	if s.name != "" {
		ctx = logging.WithQuery(ctx, s.name)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.logger, "poll"))
	sampler := logging.NewAttemptSampler(0)

	start := time.Now()
	stats := Stats{}
	defer func() {
		stats.Elapsed = time.Since(start)
		if s.stats != nil {
			*s.stats = stats
		}
	}()

	fail := func(kind error, cause error) error {
		return &Error{
			Name:     s.name,
			Attempts: stats.Attempts,
			Elapsed:  time.Since(start),
			Err:      kind,
			Cause:    cause,
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			logger.Debug("poll canceled before attempt", logging.Args(logging.Int(logging.FieldAttempt, attempt))...)
			return zero, fail(ErrCanceled, context.Cause(ctx))
		}
		canceled, err := callCanceled(s.canceled)
		if err != nil {
			logging.ErrorWithContext(logger, "cancel predicate failed", "poll_error", logging.Error(err))
			return zero, fail(err, nil)
		}
		if canceled {
			logger.Debug("poll canceled before attempt", logging.Args(logging.Int(logging.FieldAttempt, attempt))...)
			return zero, fail(ErrCanceled, nil)
		}

		attemptStart := time.Now()
		stats.Attempts = attempt

		value, received, err := receive(ctx, issue, s.receiveTimeout)
		if received {
			stats.Replies++
		}
		if err == nil && received {
			var accepted bool
			accepted, err = acceptValue(s.accept, value)
			if err == nil && accepted {
				logger.Debug("poll resolved", logging.Args(
					logging.Int(logging.FieldAttempt, attempt),
					logging.Duration("elapsed", time.Since(start)),
				)...)
				return value, nil
			}
		}

		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				logger.Debug("poll canceled during attempt", logging.Args(logging.Int(logging.FieldAttempt, attempt))...)
				return zero, fail(ErrCanceled, context.Cause(ctx))
			}
			if s.onError == nil {
				logging.ErrorWithContext(logger, "poll aborted by unexpected error", "poll_error",
					logging.Int(logging.FieldAttempt, attempt),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "inspect the widget request or success predicate"),
				)
				return zero, fail(err, nil)
			}
			s.onError(attempt, err)
		} else if sampler.ShouldLog(attempt) {
			logger.Debug("poll attempt rejected", logging.Args(
				logging.Int(logging.FieldAttempt, attempt),
				logging.Bool("received", received),
			)...)
		}

		if wait := s.interval - time.Since(attemptStart); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return zero, fail(ErrCanceled, err)
			}
		}
	}

	logging.WarnWithContext(logger, "poll exhausted without an acceptable reply", "poll_exhausted",
		logging.Int("attempts", stats.Attempts),
		logging.Int("replies", stats.Replies),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldErrorHint, "the widget may still be loading or unresponsive"),
		logging.String(logging.FieldImpact, "caller receives no value"),
	)
	return zero, fail(ErrExhausted, nil)
}

func callCanceled(canceled func() bool) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{where: "cancel predicate", value: r}
		}
	}()
	return canceled(), nil
}

func receive[T any](ctx context.Context, issue Request[T], timeout time.Duration) (value T, received bool, err error) {
	replies := make(chan T, 1)
	reply := func(v T) {
		select {
		case replies <- v:
		default:
		}
	}

	if err := invoke(issue, reply); err != nil {
		return value, false, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-replies:
		return v, true, nil
	case <-timer.C:
		return value, false, nil
	case <-ctx.Done():
		return value, false, ctx.Err()
	}
}

func invoke[T any](issue Request[T], reply func(T)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{where: "request", value: r}
		}
	}()
	return issue(reply)
}

func acceptValue(accept func(any) bool, value any) (ok bool, err error) {
	if accept == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{where: "accept predicate", value: r}
		}
	}()
	return accept(value), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
