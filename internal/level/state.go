package level

import (
	"log/slog"
	"math"
	"sync"

	"soundstage/internal/logging"
)

// State owns one raw/displayed level pair. Any goroutine may write the raw
// level; only the smoothing loop writes the displayed level. The loop runs
// while the two differ and exits once they converge, so an idle signal costs
// nothing.
type State struct {
	mu        sync.Mutex
	raw       float64
	displayed float64
	params    Params
	clock     Clock
	logger    *slog.Logger

	running bool
	closed  bool
	stop    chan struct{}
	loopWG  sync.WaitGroup

	subsMu sync.Mutex
	subs   map[chan float64]struct{}
}

// Option configures a State.
type Option func(*State)

// WithClock replaces the system frame clock.
func WithClock(c Clock) Option {
	return func(s *State) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger attaches a logger for loop start/stop debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) { s.logger = logger }
}

// NewState creates an idle State at level 0. Invalid params fall back to
// DefaultParams.
func NewState(p Params, opts ...Option) *State {
	if p.Validate() != nil {
		p = DefaultParams()
	}
	s := &State{
		params: p,
		clock:  SystemClock(),
		stop:   make(chan struct{}),
		subs:   make(map[chan float64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "level")
	return s
}

// SetRaw records a new raw level and wakes the smoothing loop if it is idle.
// Non-finite values are ignored.
func (s *State) SetRaw(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = v
	if s.closed || s.running || s.raw == s.displayed {
		return
	}
	s.running = true
	s.loopWG.Add(1)
	go s.loop(s.params)
}

// Raw returns the latest raw level.
func (s *State) Raw() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Displayed returns the current smoothed level.
func (s *State) Displayed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayed
}

// Running reports whether the smoothing loop is active.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Params returns the current tuning.
func (s *State) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams retunes the smoother. A running loop picks the change up on its
// next frame. Invalid params are rejected.
func (s *State) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Subscribe returns a channel receiving each new displayed level. A slow
// reader only ever sees the latest value. Call the returned func to stop.
func (s *State) Subscribe() (<-chan float64, func()) {
	ch := make(chan float64, 1)
	s.subsMu.Lock()
	if s.subs == nil {
		close(ch)
		s.subsMu.Unlock()
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
}

// Close stops the loop, waits for it to exit, and closes all subscriptions.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()

	s.loopWG.Wait()

	s.subsMu.Lock()
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.subsMu.Unlock()
}

func (s *State) loop(p Params) {
	defer s.loopWG.Done()

	ticker := s.clock.NewTicker(p.Cadence)
	defer ticker.Stop()
	cadence := p.Cadence
	s.logger.Debug("smoothing started", logging.Args(logging.Float64("target", s.Raw()))...)

	for {
		select {
		case <-s.stop:
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C():
		}

		s.mu.Lock()
		next, converged := Step(s.displayed, s.raw, s.params)
		s.displayed = next
		if converged {
			s.running = false
		}
		if s.params.Cadence != cadence {
			cadence = s.params.Cadence
			ticker.Reset(cadence)
		}
		s.mu.Unlock()

		s.publish(next)
		if converged {
			s.logger.Debug("smoothing converged", logging.Args(logging.Float64("level", next))...)
			return
		}
	}
}

func (s *State) publish(v float64) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
