package widget

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by calls on a widget after Close.
var ErrClosed = errors.New("widget closed")

// Handler receives a bound event. data is nil for UI events.
type Handler func(event Event, data *AudioData)

// LoadOptions are passed to Load alongside the new track URL.
type LoadOptions struct {
	AutoPlay     bool
	ShowArtwork  bool
	ShowComments bool
	Color        string
	// Params holds extra widget URL parameters.
	Params map[string]string
	// Loaded is called once the widget finished loading the URL.
	Loaded func()
}

// Widget is the control surface of an embedded player. Accessors return at
// once and answer through reply, which may fire late, more than once, with
// placeholder data, or never. Implementations need not be safe for
// concurrent use of the same accessor; Client serialises those.
type Widget interface {
	Position(reply func(time.Duration)) error
	Duration(reply func(time.Duration)) error
	// Volume replies on a 0..100 scale.
	Volume(reply func(float64)) error
	CurrentSound(reply func(*Sound)) error
	Sounds(reply func([]Sound)) error
	CurrentSoundIndex(reply func(int)) error
	Paused(reply func(bool)) error

	Load(url string, opts LoadOptions) error
	Play() error
	Pause() error
	Toggle() error
	SeekTo(position time.Duration) error
	SetVolume(volume float64) error
	Next() error
	Prev() error
	Skip(index int) error

	Bind(event Event, handler Handler) error
	Unbind(event Event) error
	Close() error
}

// WaitForEvent binds event, runs trigger (if any), and blocks until the event
// fires, the timeout passes, or ctx is done. Binding before trigger runs
// means an event the trigger causes cannot be missed. Any previous binding
// for event is replaced and removed again on return.
func WaitForEvent(ctx context.Context, w Widget, event Event, timeout time.Duration, trigger func() error) (*AudioData, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	fired := make(chan *AudioData, 1)
	if err := w.Bind(event, func(_ Event, data *AudioData) {
		select {
		case fired <- data:
		default:
		}
	}); err != nil {
		return nil, fmt.Errorf("bind %s: %w", event, err)
	}
	defer func() { _ = w.Unbind(event) }()

	if trigger != nil {
		if err := trigger(); err != nil {
			return nil, err
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case data := <-fired:
		return data, nil
	case <-timer.C:
		return nil, fmt.Errorf("event %s never occurred within %s", event, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
