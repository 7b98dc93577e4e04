package sim_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"soundstage/internal/testsupport"
	"soundstage/internal/widget"
	"soundstage/internal/widget/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeNow() *fakeNow {
	return &fakeNow{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func scenario() sim.Scenario {
	return sim.Scenario{
		Volume: 70,
		Sounds: []widget.Sound{
			{ID: 1, Title: "One", DurationMS: 10_000},
			{ID: 2, Title: "Two", DurationMS: 20_000},
		},
	}
}

func newSim(t *testing.T, sc sim.Scenario, now *fakeNow) *sim.Sim {
	t.Helper()
	s, err := sim.New(sc, sim.WithNow(now.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// await issues one accessor call and returns the first reply.
func await[T any](t *testing.T, call func(func(T)) error) T {
	t.Helper()
	ch := make(chan T, 2)
	require.NoError(t, call(func(v T) { ch <- v }))
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("no reply")
		var zero T
		return zero
	}
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no sounds", "sounds: []\n"},
		{"missing id", "sounds:\n  - title: x\n    duration: 1000\n"},
		{"repeated id", "sounds:\n  - {id: 1, duration: 10}\n  - {id: 1, duration: 10}\n"},
		{"no duration", "sounds:\n  - {id: 1, title: x}\n"},
		{"drop every reply", "drop_every: 1\nsounds:\n  - {id: 1, duration: 10}\n"},
		{"loud", "volume: 101\nsounds:\n  - {id: 1, duration: 10}\n"},
		{"bad yaml", "sounds: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sim.ParseScenario([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}

	sc, err := sim.ParseScenario([]byte("loading: 250ms\nlatency: 2ms\nsounds:\n  - {id: 9, title: Nine, duration: 5000}\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, sc.Loading)
	assert.Equal(t, 2*time.Millisecond, sc.Latency)
	assert.Equal(t, float64(100), sc.Volume, "volume defaults to full")
	assert.Equal(t, 5*time.Second, sc.Sounds[0].Duration())
}

func TestLoadScenario(t *testing.T) {
	demo, err := sim.LoadScenario("")
	require.NoError(t, err)
	assert.Len(t, demo.Sounds, 3)
	assert.NotEmpty(t, demo.Waveforms[demo.Sounds[0].ID])

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	testsupport.WriteFile(t, path, "sounds:\n  - id: 5\n    title: Five\n    duration: 3000\n    user: {username: someone}\n")
	sc, err := sim.LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Sounds, 1)
	assert.Equal(t, "someone", sc.Sounds[0].Artist())

	_, err = sim.LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlaceholdersWhileLoading(t *testing.T) {
	now := newFakeNow()
	sc := scenario()
	sc.Loading = time.Second
	s := newSim(t, sc, now)

	assert.Zero(t, await(t, s.Duration))
	sounds := await(t, s.Sounds)
	require.Len(t, sounds, 2)
	assert.False(t, sounds[0].Loaded())
	assert.False(t, await(t, s.CurrentSound).Loaded())

	now.Advance(time.Second)
	assert.Equal(t, 10*time.Second, await(t, s.Duration))
	assert.True(t, await(t, s.CurrentSound).Loaded())
	assert.Equal(t, "Two", await(t, s.Sounds)[1].Title)
}

func TestDropAndFailScript(t *testing.T) {
	now := newFakeNow()
	sc := scenario()
	sc.DropEvery = 2
	sc.FailEvery = 3
	s := newSim(t, sc, now)

	got := make(chan float64, 4)
	cb := func(v float64) { got <- v }

	require.NoError(t, s.Volume(cb)) // call 1 replies
	require.NoError(t, s.Volume(cb)) // call 2 dropped
	err := s.Volume(cb)              // call 3 fails
	assert.True(t, errors.Is(err, sim.ErrInjected), "got %v", err)

	assert.Equal(t, 70.0, <-got)
	select {
	case v := <-got:
		t.Fatalf("dropped call replied with %v", v)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestDuplicateReplies(t *testing.T) {
	sc := scenario()
	sc.Duplicate = true
	s := newSim(t, sc, newFakeNow())

	got := make(chan int, 4)
	require.NoError(t, s.CurrentSoundIndex(func(i int) { got <- i }))
	for range 2 {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatal("expected two replies")
		}
	}
}

func TestPlaybackClock(t *testing.T) {
	now := newFakeNow()
	s := newSim(t, scenario(), now)

	assert.True(t, await(t, s.Paused))
	require.NoError(t, s.Play())
	now.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, await(t, s.Position))
	assert.False(t, await(t, s.Paused))

	require.NoError(t, s.Pause())
	now.Advance(5 * time.Second)
	assert.Equal(t, 3*time.Second, await(t, s.Position))

	require.NoError(t, s.SeekTo(time.Minute))
	assert.Equal(t, 10*time.Second, await(t, s.Position), "seek clamps to duration")

	require.NoError(t, s.Toggle())
	assert.False(t, await(t, s.Paused))
	require.NoError(t, s.Next())
	assert.Equal(t, 1, await(t, s.CurrentSoundIndex))
	assert.Zero(t, await(t, s.Position))
	require.NoError(t, s.Prev())
	assert.Equal(t, 0, await(t, s.CurrentSoundIndex))
	assert.Error(t, s.Skip(5))

	require.NoError(t, s.SetVolume(150))
	assert.Equal(t, 100.0, await(t, s.Volume))
}

func TestTickEmitsProgressAndAdvances(t *testing.T) {
	now := newFakeNow()
	s := newSim(t, scenario(), now)

	var mu sync.Mutex
	var events []widget.Event
	var last *widget.AudioData
	record := func(e widget.Event, data *widget.AudioData) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
		if data != nil {
			last = data
		}
	}
	for _, e := range []widget.Event{widget.EventReady, widget.EventPlay, widget.EventPlayProgress, widget.EventFinish} {
		require.NoError(t, s.Bind(e, record))
	}

	s.Tick() // finishes loading
	require.NoError(t, s.Play())
	now.Advance(5 * time.Second)
	s.Tick()

	mu.Lock()
	require.NotNil(t, last)
	assert.InDelta(t, 0.5, last.RelativePosition, 1e-9)
	assert.Equal(t, 5*time.Second, last.Position())
	mu.Unlock()

	now.Advance(6 * time.Second)
	s.Tick()
	assert.Equal(t, 1, await(t, s.CurrentSoundIndex), "finish advances the playlist")
	assert.False(t, await(t, s.Paused))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []widget.Event{
		widget.EventReady,
		widget.EventPlay,
		widget.EventPlayProgress,
		widget.EventPlayProgress,
		widget.EventFinish,
		widget.EventPlay,
	}, events)
}

func TestLoadRestartsLoading(t *testing.T) {
	now := newFakeNow()
	sc := scenario()
	sc.Loading = time.Second
	s := newSim(t, sc, now)

	loaded := make(chan struct{})
	require.NoError(t, s.Load("https://soundcloud.com/a/b", widget.LoadOptions{
		AutoPlay: true,
		Loaded:   func() { close(loaded) },
	}))
	assert.Equal(t, "https://soundcloud.com/a/b", s.URL())

	s.Tick()
	select {
	case <-loaded:
		t.Fatal("loaded callback fired during loading")
	default:
	}
	now.Advance(time.Second)
	s.Tick()
	<-loaded
	assert.False(t, await(t, s.Paused), "autoplay starts after loading")
}

func TestBindValidation(t *testing.T) {
	s := newSim(t, scenario(), newFakeNow())
	assert.Error(t, s.Bind("bogus", func(widget.Event, *widget.AudioData) {}))
	assert.Error(t, s.Bind(widget.EventPlay, nil))
	require.NoError(t, s.Bind(widget.EventPlay, func(widget.Event, *widget.AudioData) {
		t.Error("unbound handler called")
	}))
	require.NoError(t, s.Unbind(widget.EventPlay))
	require.NoError(t, s.Play())
}

func TestCloseDiscardsPendingReplies(t *testing.T) {
	sc := scenario()
	sc.Latency = 20 * time.Millisecond
	sc.ProgressInterval = time.Millisecond
	s, err := sim.New(sc)
	require.NoError(t, err)

	replied := make(chan struct{}, 1)
	require.NoError(t, s.Position(func(time.Duration) { replied <- struct{}{} }))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case <-replied:
		t.Fatal("reply delivered after Close")
	case <-time.After(50 * time.Millisecond):
	}
	assert.ErrorIs(t, s.Position(func(time.Duration) {}), widget.ErrClosed)
	assert.ErrorIs(t, s.Play(), widget.ErrClosed)
}
