package meter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstage/internal/widget"
)

type fakeControls struct {
	mu    sync.Mutex
	calls []string
	seeks []time.Duration
	err   error
}

func (f *fakeControls) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeControls) Toggle() error { return f.record("toggle") }
func (f *fakeControls) Next() error   { return f.record("next") }
func (f *fakeControls) Prev() error   { return f.record("prev") }

func (f *fakeControls) Seek(_ context.Context, delta time.Duration) (time.Duration, error) {
	f.mu.Lock()
	f.seeks = append(f.seeks, delta)
	f.mu.Unlock()
	return delta, f.record("seek")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return got, cmd
}

func snapshot() widget.Snapshot {
	return widget.Snapshot{
		Position: 42 * time.Second,
		Duration: 184 * time.Second,
		Volume:   80,
		Paused:   false,
		Sound: &widget.Sound{
			ID:            1001,
			Title:         "Night Drive",
			Genre:         "synthwave",
			PlaybackCount: 12840,
			LikesCount:    412,
			User:          &widget.User{Username: "soundstage"},
		},
	}
}

func TestKeysDriveControls(t *testing.T) {
	ctrl := &fakeControls{}
	m := New(context.Background(), ctrl, nil, nil)

	for _, k := range []string{" ", "n", "p", "left", "right"} {
		var cmd tea.Cmd
		m, cmd = apply(t, m, key(k))
		require.NotNil(t, cmd, "key %q produced no command", k)
		assert.Nil(t, cmd())
	}
	assert.Equal(t, []string{"toggle", "next", "prev", "seek", "seek"}, ctrl.calls)
	assert.Equal(t, []time.Duration{-SeekStep, SeekStep}, ctrl.seeks)

	_, cmd := apply(t, m, key("x"))
	assert.Nil(t, cmd)
}

func TestControlErrorIsShown(t *testing.T) {
	ctrl := &fakeControls{err: errors.New("widget closed")}
	m := New(context.Background(), ctrl, nil, nil)

	m, cmd := apply(t, m, key("n"))
	msg := cmd()
	m, _ = apply(t, m, msg)
	assert.Contains(t, m.View(), "error: widget closed")

	m, _ = apply(t, m, SnapshotMsg(snapshot()))
	assert.NotContains(t, m.View(), "error:")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), &fakeControls{}, nil, nil)
	m, cmd := apply(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	m = New(context.Background(), &fakeControls{}, nil, nil)
	_, cmd = apply(t, m, key("ctrl+c"))
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestChannelsFeedModel(t *testing.T) {
	levels := make(chan float64, 1)
	updates := make(chan widget.Snapshot, 1)
	m := New(context.Background(), &fakeControls{}, levels, updates)

	levels <- 0.5
	msg := waitLevel(levels)()
	m, cmd := apply(t, m, msg)
	assert.Equal(t, 0.5, m.level)
	require.NotNil(t, cmd, "level update should wait for the next level")

	updates <- snapshot()
	m, cmd = apply(t, m, waitSnapshot(updates)())
	assert.True(t, m.have)
	assert.Equal(t, "Night Drive", m.snap.Sound.Title)
	require.NotNil(t, cmd)

	close(levels)
	assert.IsType(t, closedMsg{}, waitLevel(levels)())
	assert.Nil(t, waitLevel(nil))
	assert.Nil(t, waitSnapshot(nil))
}

func TestView(t *testing.T) {
	m := New(context.Background(), &fakeControls{}, nil, nil)
	assert.Contains(t, m.View(), "waiting for the widget")
	assert.Contains(t, m.View(), help)

	m, _ = apply(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m, _ = apply(t, m, SnapshotMsg(snapshot()))
	m, _ = apply(t, m, LevelMsg(1))
	view := m.View()

	assert.Contains(t, view, "Night Drive")
	assert.Contains(t, view, "soundstage")
	assert.Contains(t, view, "Synthwave · 12.8k plays · 412 likes")
	assert.Contains(t, view, "0:42")
	assert.Contains(t, view, "3:04")
	assert.Contains(t, view, "level")
	assert.Contains(t, view, "1.00")
	assert.Equal(t, 24, strings.Count(view, "▮"), "full level fills the bar")
}

func TestIdleSweepBounces(t *testing.T) {
	m := New(context.Background(), &fakeControls{}, nil, nil)
	for range 200 {
		var cmd tea.Cmd
		m, cmd = apply(t, m, frameMsg(time.Now()))
		require.NotNil(t, cmd)
		assert.GreaterOrEqual(t, m.sweep, -1.1)
		assert.LessOrEqual(t, m.sweep, 1.1)
	}
	assert.Equal(t, 1, strings.Count(m.levelBar(), "•"))
}

func TestRampColor(t *testing.T) {
	assert.Equal(t, colorGreen, rampColor(0))
	assert.Equal(t, colorPink, rampColor(1))
	assert.Equal(t, colorPink, rampColor(3))
}

func TestPlainLine(t *testing.T) {
	snap := snapshot()
	assert.Equal(t, `playing 0:42/3:04 "Night Drive" level=0.25`, PlainLine(snap, 0.25))
	snap.Paused = true
	snap.Sound = nil
	assert.Equal(t, `paused 0:42/3:04 "unknown sound" level=0.00`, PlainLine(snap, 0))
}
