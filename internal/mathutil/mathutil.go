// Package mathutil holds the small numeric helpers the meter view uses.
package mathutil

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return 2 * math.Pi * degrees / 360
}

// Sin is math.Sin over degrees.
func Sin(degrees float64) float64 { return math.Sin(DegToRad(degrees)) }

// Clamp limits v to [lo, hi]. When lo > hi the result is lo.
func Clamp[N Number](v, lo, hi N) N {
	return max(lo, min(v, hi))
}

// Lerp interpolates between a and b by t.
func Lerp[F constraints.Float](a, b, t F) F {
	return a + (b-a)*t
}

// Bounce returns the velocity a particle at position should have to stay
// within [-limit, limit]: pointing back inside once it is out, unchanged
// otherwise.
func Bounce[N constraints.Signed | constraints.Float](position, limit, velocity N) N {
	switch {
	case position > limit:
		return -abs(velocity)
	case position < -limit:
		return abs(velocity)
	default:
		return velocity
	}
}

// Triangle is a tent over [l, r]: b at the edges, t at the midpoint,
// linear between.
func Triangle(x, l, r, b, t float64) float64 {
	return (b-t)*math.Abs((l+r-2*x)/(l-r)) + t
}

func abs[N constraints.Signed | constraints.Float](v N) N {
	if v < 0 {
		return -v
	}
	return v
}
