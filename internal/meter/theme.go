package meter

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"soundstage/internal/mathutil"
)

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

// Level bar ramp endpoints, quiet to loud.
var (
	rampLow  = [3]float64{0xa6, 0xe3, 0xa1}
	rampHigh = [3]float64{0xf5, 0xc2, 0xe7}
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	artistStyle = lipgloss.NewStyle().Foreground(colorPeach)
	metaStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	dimStyle    = lipgloss.NewStyle().Foreground(colorSurface1)
	helpStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	playedStyle = lipgloss.NewStyle().Foreground(colorPink)
	glowStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
)

// rampColor interpolates the level bar colour at f in 0..1.
func rampColor(f float64) lipgloss.Color {
	f = mathutil.Clamp(f, 0, 1)
	r := mathutil.Lerp(rampLow[0], rampHigh[0], f)
	g := mathutil.Lerp(rampLow[1], rampHigh[1], f)
	b := mathutil.Lerp(rampLow[2], rampHigh[2], f)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", int(r+0.5), int(g+0.5), int(b+0.5)))
}
