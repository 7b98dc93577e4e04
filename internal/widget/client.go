package widget

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"soundstage/internal/logging"
	"soundstage/internal/poll"
)

// Query names used for logging and per-query serialisation.
const (
	QueryPosition     = "position"
	QueryDuration     = "duration"
	QueryVolume       = "volume"
	QueryCurrentSound = "current_sound"
	QuerySounds       = "sounds"
	QuerySoundIndex   = "current_sound_index"
	QueryPaused       = "paused"
)

// Client wraps a Widget's callback accessors into blocking typed calls that
// retry until the widget stops answering with loading placeholders.
type Client struct {
	w      Widget
	base   []poll.Option
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPollOptions sets the poll policy applied to every query.
func WithPollOptions(opts ...poll.Option) ClientOption {
	return func(c *Client) { c.base = append(c.base, opts...) }
}

// WithClientLogger attaches a logger to the client and its polls.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient wraps w.
func NewClient(w Widget, opts ...ClientOption) *Client {
	c := &Client{w: w, locks: make(map[string]*sync.Mutex)}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "widget")
	return c
}

// Widget returns the wrapped widget for direct control calls.
func (c *Client) Widget() Widget { return c.w }

func (c *Client) lock(name string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[name]
	if !ok {
		l = &sync.Mutex{}
		c.locks[name] = l
	}
	return l
}

func query[T any](ctx context.Context, c *Client, name string, issue poll.Request[T], accept func(T) bool, extra []poll.Option) (T, error) {
	l := c.lock(name)
	l.Lock()
	defer l.Unlock()

	opts := slices.Clone(c.base)
	opts = append(opts, poll.WithName(name), poll.WithLogger(c.logger))
	if accept != nil {
		opts = append(opts, poll.WithAccept(accept))
	}
	opts = append(opts, extra...)
	return poll.Do(ctx, issue, opts...)
}

// Position returns the playback position.
func (c *Client) Position(ctx context.Context, opts ...poll.Option) (time.Duration, error) {
	return query(ctx, c, QueryPosition, c.w.Position, func(d time.Duration) bool { return d >= 0 }, opts)
}

// Duration returns the current sound's length. Zero means still loading.
func (c *Client) Duration(ctx context.Context, opts ...poll.Option) (time.Duration, error) {
	return query(ctx, c, QueryDuration, c.w.Duration, func(d time.Duration) bool { return d > 0 }, opts)
}

// Volume returns the volume on a 0..100 scale.
func (c *Client) Volume(ctx context.Context, opts ...poll.Option) (float64, error) {
	return query(ctx, c, QueryVolume, c.w.Volume, func(v float64) bool { return v >= 0 && v <= 100 }, opts)
}

// CurrentSound returns the loaded sound, waiting until its details arrive.
func (c *Client) CurrentSound(ctx context.Context, opts ...poll.Option) (*Sound, error) {
	return query(ctx, c, QueryCurrentSound, c.w.CurrentSound, func(s *Sound) bool { return s != nil && s.Loaded() }, opts)
}

// Sounds returns the playlist once every entry is loaded.
func (c *Client) Sounds(ctx context.Context, opts ...poll.Option) ([]Sound, error) {
	return query(ctx, c, QuerySounds, c.w.Sounds, func(sounds []Sound) bool {
		return len(sounds) > 0 && !slices.ContainsFunc(sounds, func(s Sound) bool { return !s.Loaded() })
	}, opts)
}

// CurrentSoundIndex returns the playlist index of the loaded sound.
func (c *Client) CurrentSoundIndex(ctx context.Context, opts ...poll.Option) (int, error) {
	return query(ctx, c, QuerySoundIndex, c.w.CurrentSoundIndex, func(i int) bool { return i >= 0 }, opts)
}

// Paused reports whether playback is paused.
func (c *Client) Paused(ctx context.Context, opts ...poll.Option) (bool, error) {
	return query(ctx, c, QueryPaused, c.w.Paused, nil, opts)
}

// Snapshot is one consistent-enough view of the player.
type Snapshot struct {
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Paused   bool
	Index    int
	Sound    *Sound
}

// Progress returns Position as a fraction of Duration.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	return min(max(p, 0), 1)
}

// Snapshot queries the player concurrently. The first failing query cancels
// the rest.
func (c *Client) Snapshot(ctx context.Context, opts ...poll.Option) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Position, err = c.Position(gctx, opts...)
		return err
	})
	g.Go(func() (err error) {
		snap.Duration, err = c.Duration(gctx, opts...)
		return err
	})
	g.Go(func() (err error) {
		snap.Volume, err = c.Volume(gctx, opts...)
		return err
	})
	g.Go(func() (err error) {
		snap.Paused, err = c.Paused(gctx, opts...)
		return err
	})
	g.Go(func() (err error) {
		snap.Index, err = c.CurrentSoundIndex(gctx, opts...)
		return err
	})
	g.Go(func() (err error) {
		snap.Sound, err = c.CurrentSound(gctx, opts...)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// PlayIndex skips to index, waits for the widget to report it, and starts
// playback. A newer PlayIndex on the same tracker aborts an older one between
// steps, so rapid track clicks settle on the last one.
func (c *Client) PlayIndex(ctx context.Context, tracker *poll.Tracker, index int) error {
	return poll.Run(ctx, tracker,
		func(ctx context.Context) error {
			return c.w.Skip(index)
		},
		func(ctx context.Context) error {
			got, err := c.CurrentSoundIndex(ctx, poll.WithAccept(func(i int) bool { return i == index }))
			if err != nil {
				return fmt.Errorf("wait for index %d: %w", index, err)
			}
			c.logger.Debug("track selected", logging.Args(logging.Int("index", got))...)
			return nil
		},
		func(ctx context.Context) error {
			return c.w.Play()
		},
		func(ctx context.Context) error {
			_, err := c.Paused(ctx, poll.WithAccept(func(paused bool) bool { return !paused }))
			if err != nil {
				return fmt.Errorf("wait for playback: %w", err)
			}
			return nil
		},
	)
}

// Seek moves the playhead by delta, clamped to the sound.
func (c *Client) Seek(ctx context.Context, delta time.Duration) (time.Duration, error) {
	snap := struct{ pos, dur time.Duration }{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.pos, err = c.Position(gctx); return err })
	g.Go(func() (err error) { snap.dur, err = c.Duration(gctx); return err })
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("seek: %w", err)
	}
	target := min(max(snap.pos+delta, 0), snap.dur)
	if err := c.w.SeekTo(target); err != nil {
		return 0, fmt.Errorf("seek: %w", err)
	}
	return target, nil
}
