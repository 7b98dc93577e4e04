package poll

import (
	"fmt"
	"log/slog"
	"time"

	"soundstage/internal/logging"
)

const (
	// DefaultMaxAttempts bounds a poll when no WithMaxAttempts is given.
	DefaultMaxAttempts = 100
	// DefaultInterval is both the receive timeout and the attempt spacing.
	DefaultInterval = 50 * time.Millisecond
)

// Option configures a single poll.
type Option func(*settings)

type settings struct {
	name           string
	maxAttempts    int
	interval       time.Duration
	receiveTimeout time.Duration
	accept         func(any) bool
	canceled       func() bool
	onError        func(attempt int, err error)
	logger         *slog.Logger
	stats          *Stats
}

// Stats reports how a finished poll went, whatever its outcome.
type Stats struct {
	Attempts int
	Elapsed  time.Duration
	Replies  int
}

func newSettings(opts []Option) settings {
	s := settings{
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.receiveTimeout <= 0 {
		s.receiveTimeout = s.interval
	}
	if s.canceled == nil {
		s.canceled = func() bool { return false }
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// WithName labels the poll in logs and errors (e.g. "position").
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithMaxAttempts bounds the number of attempts. Values below 1 select the default.
func WithMaxAttempts(n int) Option {
	return func(s *settings) { s.maxAttempts = n }
}

// WithInterval sets the per-attempt receive timeout and the minimum spacing
// between attempt starts.
func WithInterval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// WithReceiveTimeout overrides how long one attempt waits for its reply,
// leaving the attempt spacing at the interval.
func WithReceiveTimeout(d time.Duration) Option {
	return func(s *settings) { s.receiveTimeout = d }
}

// WithAccept installs the success predicate. The predicate's parameter type
// must match the poll's result type; a mismatch is reported as an
// unexpected error on the first reply.
func WithAccept[T any](fn func(T) bool) Option {
	return func(s *settings) {
		if fn == nil {
			s.accept = nil
			return
		}
		s.accept = func(v any) bool {
			typed, ok := v.(T)
			if !ok {
				var want T
				panic(fmt.Sprintf("accept predicate wants %T, got %T", want, v))
			}
			return fn(typed)
		}
	}
}

// WithCanceled installs the cancel predicate, checked before every attempt.
func WithCanceled(fn func() bool) Option {
	return func(s *settings) { s.canceled = fn }
}

// WithErrorHandler routes unexpected request or predicate failures to fn
// instead of aborting the poll. The failing attempt counts as not accepted.
func WithErrorHandler(fn func(attempt int, err error)) Option {
	return func(s *settings) { s.onError = fn }
}

// WithLogger attaches a logger; the poll adds its own component field.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithStats records attempt counts and timing into dst when the poll returns.
func WithStats(dst *Stats) Option {
	return func(s *settings) { s.stats = dst }
}
