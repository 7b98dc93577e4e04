package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"soundstage/internal/interval"
	"soundstage/internal/level"
	"soundstage/internal/logging"
	"soundstage/internal/poll"
	"soundstage/internal/waveform"
	"soundstage/internal/widget"
)

// DefaultRefreshInterval is how often a playing player re-reads the widget.
const DefaultRefreshInterval = time.Second

// ErrNoMatch is returned by Find when no title is close enough.
var ErrNoMatch = errors.New("no matching sound")

// Player owns the widget client and the level derived from it. While the
// widget plays, playProgress events move the raw level along the sound's
// waveform and the smoother eases the displayed level after it. Snapshots
// are refreshed on an interval only while playing, plus once after every
// state change.
type Player struct {
	client    *widget.Client
	level     *level.State
	waveforms WaveformSource
	logger    *slog.Logger
	refresh   time.Duration
	tracker   poll.Tracker
	loop      *interval.Loop
	updates   chan widget.Snapshot
	pollOpts  []poll.Option
	levelOpts []level.Option

	mu        sync.Mutex
	playing   bool
	dirty     bool
	snap      widget.Snapshot
	haveSnap  bool
	profile   *waveform.Profile
	profileID int64
}

// Option configures a Player.
type Option func(*Player)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// WithWaveforms sets where waveforms come from. Without one the level
// follows play state alone.
func WithWaveforms(src WaveformSource) Option {
	return func(p *Player) { p.waveforms = src }
}

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.refresh = d
		}
	}
}

// WithPollOptions sets the poll policy for every widget query.
func WithPollOptions(opts ...poll.Option) Option {
	return func(p *Player) { p.pollOpts = append(p.pollOpts, opts...) }
}

// WithLevelOptions configures the owned level.State.
func WithLevelOptions(opts ...level.Option) Option {
	return func(p *Player) { p.levelOpts = append(p.levelOpts, opts...) }
}

// New wraps w. The level smoother starts idle at 0.
func New(w widget.Widget, params level.Params, opts ...Option) *Player {
	p := &Player{
		refresh: DefaultRefreshInterval,
		updates: make(chan widget.Snapshot, 1),
		dirty:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "player")
	p.client = widget.NewClient(w, widget.WithPollOptions(p.pollOpts...), widget.WithClientLogger(p.logger))
	p.level = level.NewState(params, append([]level.Option{level.WithLogger(p.logger)}, p.levelOpts...)...)
	p.loop = interval.New(func(ctx context.Context) {
		if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			logging.WarnWithContext(p.logger, "player refresh failed", "player_refresh",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the widget finished loading"),
				logging.String(logging.FieldImpact, "track info may be stale"),
			)
		}
	}, p.period)
	return p
}

// Client returns the underlying widget client.
func (p *Player) Client() *widget.Client { return p.client }

// Level returns the owned level state.
func (p *Player) Level() *level.State { return p.level }

// Updates delivers each refreshed snapshot. Only the latest is kept.
func (p *Player) Updates() <-chan widget.Snapshot { return p.updates }

// Snapshot returns the last refreshed snapshot.
func (p *Player) Snapshot() (widget.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, p.haveSnap
}

// Playing reports the last known play state.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) period() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.dirty:
		return 0
	case p.playing:
		return p.refresh
	default:
		return interval.Never
	}
}

func (p *Player) markDirty() {
	p.mu.Lock()
	p.dirty = true
	p.mu.Unlock()
	p.loop.Kick()
}

// Run binds the widget events and refreshes until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	w := p.client.Widget()
	bindings := map[widget.Event]widget.Handler{
		widget.EventPlayProgress: p.onProgress,
		widget.EventPlay:         p.onPlay,
		widget.EventPause:        p.onStop,
		widget.EventFinish:       p.onStop,
		widget.EventSeek:         p.onProgress,
	}
	for event, handler := range bindings {
		if err := w.Bind(event, handler); err != nil {
			return fmt.Errorf("bind %s: %w", event, err)
		}
	}
	defer func() {
		for event := range bindings {
			_ = w.Unbind(event)
		}
	}()

	err := p.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Player) onProgress(_ widget.Event, data *widget.AudioData) {
	if data == nil {
		return
	}
	p.mu.Lock()
	profile := p.profile
	playing := p.playing
	p.mu.Unlock()
	if !playing {
		return
	}
	if profile == nil || profile.Len() == 0 {
		p.level.SetRaw(1)
		return
	}
	p.level.SetRaw(profile.Level(data.RelativePosition))
}

func (p *Player) onPlay(widget.Event, *widget.AudioData) {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.markDirty()
}

func (p *Player) onStop(widget.Event, *widget.AudioData) {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.level.SetRaw(0)
	p.markDirty()
}

// Refresh reads a fresh snapshot and loads the current sound's waveform if
// it changed.
func (p *Player) Refresh(ctx context.Context) (widget.Snapshot, error) {
	p.mu.Lock()
	p.dirty = false
	p.mu.Unlock()

	snap, err := p.client.Snapshot(ctx)
	if err != nil {
		return widget.Snapshot{}, err
	}
	p.loadProfile(ctx, snap.Sound)

	// an event that arrived meanwhile is newer than this snapshot's play
	// state; the follow-up refresh it scheduled will settle it
	p.mu.Lock()
	p.snap = snap
	p.haveSnap = true
	stale := p.dirty
	if !stale {
		p.playing = !snap.Paused
	}
	p.mu.Unlock()
	if snap.Paused && !stale {
		p.level.SetRaw(0)
	}

	select {
	case p.updates <- snap:
	default:
		select {
		case <-p.updates:
		default:
		}
		select {
		case p.updates <- snap:
		default:
		}
	}
	return snap, nil
}

func (p *Player) loadProfile(ctx context.Context, sound *widget.Sound) {
	if sound == nil || p.waveforms == nil {
		return
	}
	p.mu.Lock()
	same := sound.ID == p.profileID
	p.mu.Unlock()
	if same {
		return
	}

	var profile *waveform.Profile
	data, err := p.waveforms.Waveform(ctx, sound)
	if err != nil {
		logging.WarnWithContext(p.logger, "waveform unavailable", "waveform_unavailable",
			logging.Error(err),
			logging.Any("sound_id", sound.ID),
			logging.String(logging.FieldErrorHint, "set widget.waveform_url or use a sound with a waveform"),
			logging.String(logging.FieldImpact, "level follows play state only"),
		)
	} else {
		profile = waveform.NewProfile(data, waveform.DefaultWindow)
		p.logger.Debug("waveform loaded", logging.Args(
			logging.Any("sound_id", sound.ID),
			logging.Int("levels", profile.Len()),
		)...)
	}

	p.mu.Lock()
	p.profileID = sound.ID
	p.profile = profile
	p.mu.Unlock()
}

// Toggle flips play/pause.
func (p *Player) Toggle() error {
	defer p.markDirty()
	return p.client.Widget().Toggle()
}

// Next skips to the next sound.
func (p *Player) Next() error {
	defer p.markDirty()
	return p.client.Widget().Next()
}

// Prev goes back one sound.
func (p *Player) Prev() error {
	defer p.markDirty()
	return p.client.Widget().Prev()
}

// SetVolume sets the volume on a 0..100 scale.
func (p *Player) SetVolume(v float64) error {
	defer p.markDirty()
	return p.client.Widget().SetVolume(min(max(v, 0), 100))
}

// Seek moves the playhead by delta.
func (p *Player) Seek(ctx context.Context, delta time.Duration) (time.Duration, error) {
	defer p.markDirty()
	return p.client.Seek(ctx, delta)
}

// PlayIndex starts the sound at index. A newer call supersedes an older one.
func (p *Player) PlayIndex(ctx context.Context, index int) error {
	defer p.markDirty()
	return p.client.PlayIndex(ctx, &p.tracker, index)
}

// Load points the widget at url and waits until it reports ready. The
// waveform profile is dropped so the next refresh loads the new sound's.
func (p *Player) Load(ctx context.Context, url string, opts widget.LoadOptions, timeout time.Duration) error {
	defer p.markDirty()
	w := p.client.Widget()
	if _, err := widget.WaitForEvent(ctx, w, widget.EventReady, timeout, func() error {
		return w.Load(url, opts)
	}); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}

	p.mu.Lock()
	p.profile = nil
	p.profileID = 0
	p.mu.Unlock()
	p.logger.Info("widget loaded", logging.Args(logging.String("url", url))...)
	return nil
}

// Find plays the sound whose title best matches query.
func (p *Player) Find(ctx context.Context, query string) (widget.Sound, float64, error) {
	sounds, err := p.client.Sounds(ctx)
	if err != nil {
		return widget.Sound{}, 0, fmt.Errorf("find: %w", err)
	}
	index, score, ok := widget.FindSound(sounds, query)
	if !ok {
		return widget.Sound{}, score, fmt.Errorf("%w for %q", ErrNoMatch, query)
	}
	if err := p.PlayIndex(ctx, index); err != nil {
		return sounds[index], score, fmt.Errorf("find: %w", err)
	}
	return sounds[index], score, nil
}

// Close stops the level smoother.
func (p *Player) Close() {
	p.level.Close()
}
