package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"soundstage/internal/logging"
	"soundstage/internal/widget"
)

// ErrInjected is returned by accessor calls the scenario scripts to fail.
var ErrInjected = errors.New("sim: injected failure")

// Sim is a scripted, in-process widget. It reproduces the real widget's
// misbehaviour (placeholder replies while loading, dropped, late and
// duplicated callbacks) deterministically.
type Sim struct {
	sc     Scenario
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	calls    int
	url      string
	loadedAt time.Time
	ready    bool
	autoPlay bool
	onLoaded func()
	index    int
	playing  bool
	markPos  time.Duration
	markAt   time.Time
	volume   float64
	handlers map[widget.Event][]widget.Handler
	timers   map[*time.Timer]struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

var _ widget.Widget = (*Sim)(nil)

// Option configures a Sim.
type Option func(*Sim)

// WithNow replaces the wall clock used for playback position and loading.
func WithNow(now func() time.Time) Option {
	return func(s *Sim) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sim) { s.logger = logger }
}

// New starts a simulated widget playing sc. The scenario must be valid.
func New(sc Scenario, opts ...Option) (*Sim, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	s := &Sim{
		sc:       sc,
		now:      time.Now,
		volume:   sc.Volume,
		autoPlay: sc.AutoPlay,
		handlers: make(map[widget.Event][]widget.Handler),
		timers:   make(map[*time.Timer]struct{}),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "sim")
	s.loadedAt = s.now()
	s.markAt = s.loadedAt

	if sc.ProgressInterval > 0 {
		s.wg.Add(1)
		go s.run(sc.ProgressInterval)
	}
	return s, nil
}

// Scenario returns the script the simulator runs.
func (s *Sim) Scenario() Scenario { return s.sc }

// Waveform returns the scripted waveform samples for a sound ID.
func (s *Sim) Waveform(id int64) ([]int, bool) {
	samples, ok := s.sc.Waveforms[id]
	return samples, ok
}

func (s *Sim) run(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances the simulation once: it finishes loading when due, emits
// playProgress while playing, and handles the end of a sound.
func (s *Sim) Tick() {
	var emits []emission

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !s.ready && !s.loadingLocked() {
		s.ready = true
		emits = append(emits, emission{event: widget.EventReady})
		if s.onLoaded != nil {
			loaded := s.onLoaded
			s.onLoaded = nil
			emits = append(emits, emission{fn: loaded})
		}
		if s.autoPlay && !s.playing {
			s.startLocked()
			emits = append(emits, s.audioLocked(widget.EventPlay))
		}
	}
	if s.playing {
		pos := s.positionLocked()
		dur := s.durationLocked()
		emits = append(emits, s.audioLocked(widget.EventPlayProgress))
		if pos >= dur {
			emits = append(emits, s.audioLocked(widget.EventFinish))
			if s.index+1 < len(s.sc.Sounds) {
				s.selectLocked(s.index + 1)
				s.startLocked()
				emits = append(emits, s.audioLocked(widget.EventPlay))
			} else {
				s.markPos = dur
				s.playing = false
				s.markAt = s.now()
			}
		}
	}
	s.mu.Unlock()

	s.fire(emits)
}

type emission struct {
	event widget.Event
	data  *widget.AudioData
	fn    func()
}

func (s *Sim) fire(emits []emission) {
	for _, e := range emits {
		if e.fn != nil {
			e.fn()
			continue
		}
		s.mu.Lock()
		handlers := append([]widget.Handler(nil), s.handlers[e.event]...)
		s.mu.Unlock()
		for _, h := range handlers {
			h(e.event, e.data)
		}
	}
}

func (s *Sim) loadingLocked() bool {
	return s.now().Sub(s.loadedAt) < s.sc.Loading
}

func (s *Sim) positionLocked() time.Duration {
	pos := s.markPos
	if s.playing {
		pos += s.now().Sub(s.markAt)
	}
	return min(max(pos, 0), s.durationLocked())
}

func (s *Sim) durationLocked() time.Duration {
	return s.sc.Sounds[s.index].Duration()
}

func (s *Sim) audioLocked(event widget.Event) emission {
	pos := s.positionLocked()
	dur := s.durationLocked()
	return emission{event: event, data: &widget.AudioData{
		RelativePosition: float64(pos) / float64(dur),
		LoadProgress:     1,
		CurrentPosition:  float64(pos) / float64(time.Millisecond),
	}}
}

func (s *Sim) startLocked() {
	s.markPos = s.positionLocked()
	s.markAt = s.now()
	s.playing = true
}

func (s *Sim) pauseLocked() {
	s.markPos = s.positionLocked()
	s.markAt = s.now()
	s.playing = false
}

func (s *Sim) selectLocked(index int) {
	s.index = index
	s.markPos = 0
	s.markAt = s.now()
}

// reply runs one accessor call through the scenario's failure script.
func reply[T any](s *Sim, name string, cb func(T), value func(loading bool) T) error {
	if cb == nil {
		return fmt.Errorf("sim: %s: nil callback", name)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return widget.ErrClosed
	}
	s.calls++
	call := s.calls
	if s.sc.FailEvery > 0 && call%s.sc.FailEvery == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%s call %d: %w", name, call, ErrInjected)
	}
	if s.sc.DropEvery > 0 && call%s.sc.DropEvery == 0 {
		s.mu.Unlock()
		s.logger.Debug("dropping reply", logging.Args(logging.String(logging.FieldQuery, name), logging.Int("call", call))...)
		return nil
	}
	v := value(!s.ready && s.loadingLocked())
	copies := 1
	if s.sc.Duplicate {
		copies = 2
	}
	for range copies {
		var t *time.Timer
		t = time.AfterFunc(s.sc.Latency, func() {
			s.mu.Lock()
			delete(s.timers, t)
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				cb(v)
			}
		})
		s.timers[t] = struct{}{}
	}
	s.mu.Unlock()
	return nil
}

func (s *Sim) Position(cb func(time.Duration)) error {
	return reply(s, "position", cb, func(loading bool) time.Duration {
		if loading {
			return 0
		}
		return s.positionLocked()
	})
}

func (s *Sim) Duration(cb func(time.Duration)) error {
	return reply(s, "duration", cb, func(loading bool) time.Duration {
		if loading {
			return 0
		}
		return s.durationLocked()
	})
}

func (s *Sim) Volume(cb func(float64)) error {
	return reply(s, "volume", cb, func(bool) float64 { return s.volume })
}

func (s *Sim) CurrentSound(cb func(*widget.Sound)) error {
	return reply(s, "current_sound", cb, func(loading bool) *widget.Sound {
		sound := s.sc.Sounds[s.index]
		if loading {
			return &widget.Sound{ID: sound.ID}
		}
		return &sound
	})
}

func (s *Sim) Sounds(cb func([]widget.Sound)) error {
	return reply(s, "sounds", cb, func(loading bool) []widget.Sound {
		out := make([]widget.Sound, len(s.sc.Sounds))
		for i, sound := range s.sc.Sounds {
			if loading {
				out[i] = widget.Sound{ID: sound.ID}
			} else {
				out[i] = sound
			}
		}
		return out
	})
}

func (s *Sim) CurrentSoundIndex(cb func(int)) error {
	return reply(s, "current_sound_index", cb, func(bool) int { return s.index })
}

func (s *Sim) Paused(cb func(bool)) error {
	return reply(s, "paused", cb, func(bool) bool { return !s.playing })
}

// Load restarts the loading period. The playlist stays the scenario's.
func (s *Sim) Load(url string, opts widget.LoadOptions) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return widget.ErrClosed
	}
	s.url = url
	s.ready = false
	s.loadedAt = s.now()
	s.onLoaded = opts.Loaded
	s.playing = false
	s.selectLocked(0)
	s.autoPlay = opts.AutoPlay
	s.mu.Unlock()
	return nil
}

// URL returns the last loaded URL.
func (s *Sim) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Sim) control(fn func() []emission) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return widget.ErrClosed
	}
	emits := fn()
	s.mu.Unlock()
	s.fire(emits)
	return nil
}

func (s *Sim) Play() error {
	return s.control(func() []emission {
		if s.playing {
			return nil
		}
		s.startLocked()
		return []emission{s.audioLocked(widget.EventPlay)}
	})
}

func (s *Sim) Pause() error {
	return s.control(func() []emission {
		if !s.playing {
			return nil
		}
		s.pauseLocked()
		return []emission{s.audioLocked(widget.EventPause)}
	})
}

func (s *Sim) Toggle() error {
	return s.control(func() []emission {
		if s.playing {
			s.pauseLocked()
			return []emission{s.audioLocked(widget.EventPause)}
		}
		s.startLocked()
		return []emission{s.audioLocked(widget.EventPlay)}
	})
}

func (s *Sim) SeekTo(position time.Duration) error {
	return s.control(func() []emission {
		s.markPos = min(max(position, 0), s.durationLocked())
		s.markAt = s.now()
		return []emission{s.audioLocked(widget.EventSeek)}
	})
}

func (s *Sim) SetVolume(volume float64) error {
	if math.IsNaN(volume) {
		return errors.New("sim: volume is NaN")
	}
	return s.control(func() []emission {
		s.volume = min(max(volume, 0), 100)
		return nil
	})
}

func (s *Sim) Next() error {
	return s.control(func() []emission {
		if s.index+1 < len(s.sc.Sounds) {
			s.selectLocked(s.index + 1)
		}
		return nil
	})
}

func (s *Sim) Prev() error {
	return s.control(func() []emission {
		if s.index > 0 {
			s.selectLocked(s.index - 1)
		}
		return nil
	})
}

func (s *Sim) Skip(index int) error {
	if index < 0 || index >= len(s.sc.Sounds) {
		return fmt.Errorf("sim: skip index %d out of range [0, %d)", index, len(s.sc.Sounds))
	}
	return s.control(func() []emission {
		s.selectLocked(index)
		return nil
	})
}

func (s *Sim) Bind(event widget.Event, handler widget.Handler) error {
	if !event.Valid() {
		return fmt.Errorf("sim: unknown event %q", event)
	}
	if handler == nil {
		return errors.New("sim: nil handler")
	}
	return s.control(func() []emission {
		s.handlers[event] = append(s.handlers[event], handler)
		return nil
	})
}

func (s *Sim) Unbind(event widget.Event) error {
	return s.control(func() []emission {
		delete(s.handlers, event)
		return nil
	})
}

// Close stops the background clock and discards pending replies.
func (s *Sim) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}
