package waveform

import "math"

// DefaultWindow is the smoothing half-width in samples.
const DefaultWindow = 4

// Normalize scales samples into 0..1. A non-positive height falls back to
// the largest sample.
func Normalize(samples []int, height int) []float64 {
	scale := float64(height)
	if scale <= 0 {
		for _, s := range samples {
			scale = math.Max(scale, float64(s))
		}
	}
	out := make([]float64, len(samples))
	if scale <= 0 {
		return out
	}
	for i, s := range samples {
		out[i] = min(max(float64(s)/scale, 0), 1)
	}
	return out
}

// Smooth fits a quadratic by least squares to the samples within half
// samples of each point and replaces the point with the fit's value there.
// Quadratic trends pass through unchanged; isolated spikes are flattened.
// Windows shrink at the edges.
func Smooth(values []float64, half int) []float64 {
	out := make([]float64, len(values))
	if half <= 0 {
		copy(out, values)
		return out
	}
	for i := range values {
		lo := max(i-half, 0)
		hi := min(i+half, len(values)-1)
		out[i] = fitAt(values[lo:hi+1], float64(i-lo))
	}
	return out
}

// fitAt evaluates the least-squares quadratic through ys (at x = 0, 1, ...)
// at x = center.
func fitAt(ys []float64, center float64) float64 {
	var s [5]float64
	var t [3]float64
	for j, y := range ys {
		x := float64(j) - center
		xp := 1.0
		for k := range s {
			if k < 3 {
				t[k] += xp * y
			}
			s[k] += xp
			xp *= x
		}
	}
	m := [3][3]float64{
		{s[0], s[1], s[2]},
		{s[1], s[2], s[3]},
		{s[2], s[3], s[4]},
	}
	d := det3(m)
	if math.Abs(d) < 1e-12 {
		return t[0] / s[0]
	}
	m[0][0], m[1][0], m[2][0] = t[0], t[1], t[2]
	return det3(m) / d
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Profile maps playback progress onto a loudness level.
type Profile struct {
	levels []float64
}

// NewProfile normalizes and smooths d.
func NewProfile(d Data, half int) *Profile {
	levels := Smooth(Normalize(d.Samples, d.Height), half)
	for i, v := range levels {
		levels[i] = min(max(v, 0), 1)
	}
	return &Profile{levels: levels}
}

// Len returns the number of levels.
func (p *Profile) Len() int { return len(p.levels) }

// Levels returns a copy of the smoothed levels.
func (p *Profile) Levels() []float64 {
	return append([]float64(nil), p.levels...)
}

// Level returns the interpolated level at a relative position in 0..1.
// Positions outside the range are clamped.
func (p *Profile) Level(relative float64) float64 {
	n := len(p.levels)
	switch {
	case n == 0 || math.IsNaN(relative):
		return 0
	case n == 1:
		return p.levels[0]
	}
	x := min(max(relative, 0), 1) * float64(n-1)
	i := int(x)
	if i >= n-1 {
		return p.levels[n-1]
	}
	frac := x - float64(i)
	return p.levels[i] + (p.levels[i+1]-p.levels[i])*frac
}
