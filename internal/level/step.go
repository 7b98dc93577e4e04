package level

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Mode selects how the displayed level chases the raw level.
type Mode int

const (
	// ModeEase approaches the raw level by a fixed fraction each step in
	// both directions.
	ModeEase Mode = iota
	// ModePeakDecay jumps up to a higher raw level at once and eases down
	// toward a lower one, like a meter's peak-and-decay.
	ModePeakDecay
)

func (m Mode) String() string {
	switch m {
	case ModeEase:
		return "ease"
	case ModePeakDecay:
		return "peak-decay"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a config string onto a Mode. Empty selects ModeEase.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ease":
		return ModeEase, nil
	case "peak-decay", "peak_decay", "peak":
		return ModePeakDecay, nil
	default:
		return ModeEase, fmt.Errorf("unknown smoothing mode %q", value)
	}
}

const (
	DefaultDivisor = 10
	DefaultEpsilon = 0.01
	DefaultCadence = 16 * time.Millisecond
)

// Params tunes the smoother. They are meant to be adjusted by eye; nothing
// depends on a particular divisor.
type Params struct {
	// Divisor is k in displayed += (raw-displayed)/k. Must be > 1.
	Divisor float64
	// Epsilon is the convergence tolerance; within it displayed snaps to raw.
	Epsilon float64
	// Cadence is the time between steps while converging.
	Cadence time.Duration
	Mode    Mode
}

// DefaultParams returns per-frame ease smoothing with k=10 and ε=0.01.
func DefaultParams() Params {
	return Params{
		Divisor: DefaultDivisor,
		Epsilon: DefaultEpsilon,
		Cadence: DefaultCadence,
		Mode:    ModeEase,
	}
}

// Validate reports parameters that would break convergence.
func (p Params) Validate() error {
	if math.IsNaN(p.Divisor) || p.Divisor <= 1 {
		return errors.New("divisor must be greater than 1")
	}
	if math.IsNaN(p.Epsilon) || p.Epsilon <= 0 {
		return errors.New("epsilon must be positive")
	}
	if p.Cadence <= 0 {
		return errors.New("cadence must be positive")
	}
	return nil
}

// Step advances displayed one step toward raw. converged is true when
// displayed reached raw; the caller should stop stepping until raw changes.
// A non-converged result always lies strictly between displayed and raw.
func Step(displayed, raw float64, p Params) (next float64, converged bool) {
	if math.Abs(displayed-raw) < p.Epsilon {
		return raw, true
	}
	if p.Mode == ModePeakDecay && raw > displayed {
		return raw, true
	}
	return displayed + (raw-displayed)/p.Divisor, false
}

// StepsToConverge predicts how many steps Step needs to move from from to
// to under p, counting the final snap.
func StepsToConverge(from, to float64, p Params) int {
	gap := math.Abs(to - from)
	if gap < p.Epsilon {
		return 1
	}
	if p.Mode == ModePeakDecay && to > from {
		return 1
	}
	// gap*(1-1/k)^n < eps
	n := math.Log(p.Epsilon/gap) / math.Log(1-1/p.Divisor)
	return int(math.Floor(n)) + 2
}

// Trace records successive displayed values while converging from from to
// to, up to maxSteps entries. The last entry equals to when it converged.
func Trace(from, to float64, p Params, maxSteps int) []float64 {
	if maxSteps <= 0 {
		maxSteps = 1000
	}
	out := make([]float64, 0, min(maxSteps, 64))
	current := from
	for range maxSteps {
		next, done := Step(current, to, p)
		out = append(out, next)
		current = next
		if done {
			break
		}
	}
	return out
}
