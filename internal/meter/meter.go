// Package meter is the terminal player view: track details, a progress
// bar and the smoothed level bar, with keyboard transport controls.
package meter

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"soundstage/internal/mathutil"
	"soundstage/internal/widget"
)

// SeekStep is how far the arrow keys move the playhead.
const SeekStep = 10 * time.Second

const frameInterval = 100 * time.Millisecond

// Controls is the transport surface the view drives.
type Controls interface {
	Toggle() error
	Next() error
	Prev() error
	Seek(ctx context.Context, delta time.Duration) (time.Duration, error)
}

// LevelMsg carries a new displayed level.
type LevelMsg float64

// SnapshotMsg carries a refreshed player snapshot.
type SnapshotMsg widget.Snapshot

type errMsg struct{ err error }

type frameMsg time.Time

type closedMsg struct{}

// Model is the bubbletea model for the meter.
type Model struct {
	ctx     context.Context
	ctrl    Controls
	levels  <-chan float64
	updates <-chan widget.Snapshot

	snap  widget.Snapshot
	have  bool
	level float64
	width int
	err   error

	frame    int
	sweep    float64
	velocity float64
	quitting bool
}

// New builds a meter fed by levels and updates. Either channel may be nil.
func New(ctx context.Context, ctrl Controls, levels <-chan float64, updates <-chan widget.Snapshot) Model {
	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		levels:   levels,
		updates:  updates,
		width:    80,
		sweep:    -1,
		velocity: 0.08,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitLevel(m.levels), waitSnapshot(m.updates), frame())
}

func waitLevel(ch <-chan float64) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return LevelMsg(v)
	}
}

func waitSnapshot(ch <-chan widget.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return SnapshotMsg(s)
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) control(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) seek(delta time.Duration) tea.Cmd {
	return m.control(func() error {
		_, err := m.ctrl.Seek(m.ctx, delta)
		return err
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case LevelMsg:
		m.level = float64(msg)
		return m, waitLevel(m.levels)
	case SnapshotMsg:
		m.snap = widget.Snapshot(msg)
		m.have = true
		m.err = nil
		return m, waitSnapshot(m.updates)
	case errMsg:
		m.err = msg.err
		return m, nil
	case frameMsg:
		m.frame++
		m.sweep += m.velocity
		m.velocity = mathutil.Bounce(m.sweep, 1, m.velocity)
		return m, frame()
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "space":
		return m, m.control(m.ctrl.Toggle)
	case "n":
		return m, m.control(m.ctrl.Next)
	case "p":
		return m, m.control(m.ctrl.Prev)
	case "left", "h":
		return m, m.seek(-SeekStep)
	case "right", "l":
		return m, m.seek(SeekStep)
	}
	return m, nil
}
