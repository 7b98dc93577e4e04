package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"soundstage/internal/waveform"
	"soundstage/internal/widget"
	"soundstage/internal/widget/sim"
)

// ErrNoWaveform means a sound has no waveform to drive the level from.
var ErrNoWaveform = errors.New("no waveform for sound")

// WaveformSource provides the waveform for a sound.
type WaveformSource interface {
	Waveform(ctx context.Context, sound *widget.Sound) (waveform.Data, error)
}

// simSampleHeight is the full-scale value of scenario waveform samples.
const simSampleHeight = 100

// SimWaveforms serves the waveforms scripted into a simulator scenario.
type SimWaveforms struct {
	Sim *sim.Sim
}

func (s SimWaveforms) Waveform(_ context.Context, sound *widget.Sound) (waveform.Data, error) {
	samples, ok := s.Sim.Waveform(sound.ID)
	if !ok {
		return waveform.Data{}, fmt.Errorf("%w %d", ErrNoWaveform, sound.ID)
	}
	return waveform.Data{Width: len(samples), Height: simSampleHeight, Samples: samples}, nil
}

// HTTPWaveforms fetches the waveform document a sound links to. URL, when
// set, is used for every sound instead.
type HTTPWaveforms struct {
	Fetcher *waveform.Fetcher
	URL     string
}

func (h HTTPWaveforms) Waveform(ctx context.Context, sound *widget.Sound) (waveform.Data, error) {
	url := strings.TrimSpace(h.URL)
	if url == "" {
		url = strings.TrimSpace(sound.WaveformURL)
	}
	if url == "" {
		return waveform.Data{}, fmt.Errorf("%w %d", ErrNoWaveform, sound.ID)
	}
	return h.Fetcher.Fetch(ctx, url)
}
