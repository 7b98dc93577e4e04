package meter

import (
	"fmt"
	"math"
	"strings"

	"soundstage/internal/mathutil"
	"soundstage/internal/textutil"
	"soundstage/internal/widget"
)

const help = "space play/pause · n/p next/prev · ←/→ seek · q quit"

func (m Model) barWidth() int {
	return mathutil.Clamp(m.width-16, 10, 60)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	if !m.have {
		b.WriteString(metaStyle.Render("waiting for the widget..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.header())
		b.WriteString("\n")
		if meta := details(m.snap.Sound); meta != "" {
			b.WriteString(metaStyle.Render(meta))
			b.WriteString("\n")
		}
		b.WriteString(m.progress())
		b.WriteString("\n")
	}
	b.WriteString(m.levelBar())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

func (m Model) header() string {
	glyph := "▶"
	style := glowStyle
	if m.snap.Paused {
		glyph = "❚❚"
		// pulse while paused
		if mathutil.Sin(float64(m.frame)*30) < 0 {
			style = helpStyle
		}
	}
	title, artist := "unknown sound", ""
	if s := m.snap.Sound; s != nil {
		title, artist = s.Title, s.Artist()
	}
	line := style.Render(glyph) + " " + titleStyle.Render(title)
	if artist != "" {
		line += " " + artistStyle.Render(artist)
	}
	return line
}

func details(s *widget.Sound) string {
	if s == nil {
		return ""
	}
	var parts []string
	if g := textutil.Title(s.Genre); g != "" {
		parts = append(parts, g)
	}
	if s.PlaybackCount > 0 {
		parts = append(parts, textutil.FormatCount(s.PlaybackCount)+" plays")
	}
	if s.LikesCount > 0 {
		parts = append(parts, textutil.FormatCount(s.LikesCount)+" likes")
	}
	return strings.Join(parts, " · ")
}

func (m Model) progress() string {
	width := m.barWidth()
	head := m.snap.Progress() * float64(width-1)
	var b strings.Builder
	for i := range width {
		x := float64(i)
		glow := mathutil.Clamp(mathutil.Triangle(x, head-3, head+3, 0, 1), 0, 1)
		switch {
		case glow > 0.5:
			b.WriteString(glowStyle.Render("━"))
		case x <= head:
			b.WriteString(playedStyle.Render("━"))
		default:
			b.WriteString(dimStyle.Render("─"))
		}
	}
	return fmt.Sprintf("%s %s %s",
		textutil.FormatTime(m.snap.Position),
		b.String(),
		textutil.FormatTime(m.snap.Duration))
}

func (m Model) levelBar() string {
	width := m.barWidth()
	filled := int(math.Round(mathutil.Clamp(m.level, 0, 1) * float64(width)))
	idle := filled == 0 && (!m.have || m.snap.Paused)
	dot := mathutil.Clamp(int(math.Round((m.sweep+1)/2*float64(width-1))), 0, width-1)

	var b strings.Builder
	for i := range width {
		switch {
		case i < filled:
			f := 0.0
			if width > 1 {
				f = float64(i) / float64(width-1)
			}
			b.WriteString(playedStyle.Foreground(rampColor(f)).Render("▮"))
		case idle && i == dot:
			b.WriteString(helpStyle.Render("•"))
		default:
			b.WriteString(dimStyle.Render("▯"))
		}
	}
	return fmt.Sprintf("level %s %.2f", b.String(), m.level)
}

// PlainLine renders one status line for non-terminal output.
func PlainLine(snap widget.Snapshot, level float64) string {
	state := "playing"
	if snap.Paused {
		state = "paused"
	}
	title := "unknown sound"
	if snap.Sound != nil {
		title = snap.Sound.Title
	}
	return fmt.Sprintf("%s %s/%s %q level=%.2f",
		state,
		textutil.FormatTime(snap.Position),
		textutil.FormatTime(snap.Duration),
		title,
		level)
}
