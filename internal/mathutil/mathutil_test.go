package mathutil_test

import (
	"math"
	"testing"

	"soundstage/internal/mathutil"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTrig(t *testing.T) {
	if !approx(mathutil.DegToRad(180), math.Pi) {
		t.Fatalf("DegToRad(180) = %v", mathutil.DegToRad(180))
	}
	if !approx(mathutil.Sin(90), 1) || !approx(mathutil.Sin(270), -1) || !approx(mathutil.Sin(0), 0) {
		t.Fatal("degree trig mismatch")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, 0, 1, 0},
		{3, 0, 1, 1},
		{0.5, 2, 1, 2},
	}
	for _, tc := range tests {
		if got := mathutil.Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
	if got := mathutil.Clamp(12, 0, 10); got != 10 {
		t.Errorf("int Clamp = %d", got)
	}
}

func TestLerp(t *testing.T) {
	if got := mathutil.Lerp(2.0, 4.0, 0.25); got != 2.5 {
		t.Fatalf("Lerp = %v", got)
	}
	if got := mathutil.Lerp(float32(1), 0, 1); got != 0 {
		t.Fatalf("Lerp float32 = %v", got)
	}
}

func TestBounce(t *testing.T) {
	tests := []struct {
		pos, limit, vel, want float64
	}{
		{0, 10, 2, 2},
		{11, 10, 2, -2},
		{11, 10, -2, -2},
		{-11, 10, -2, 2},
		{10, 10, 3, 3},
	}
	for _, tc := range tests {
		if got := mathutil.Bounce(tc.pos, tc.limit, tc.vel); got != tc.want {
			t.Errorf("Bounce(%v, %v, %v) = %v, want %v", tc.pos, tc.limit, tc.vel, got, tc.want)
		}
	}
	if got := mathutil.Bounce(-5, 4, -1); got != 1 {
		t.Errorf("int Bounce = %d", got)
	}
}

func TestTriangle(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 1},
		{0.5, 0},
		{1, 1},
		{0.25, 0.5},
	}
	for _, tc := range tests {
		if got := mathutil.Triangle(tc.x, 0, 1, 1, 0); !approx(got, tc.want) {
			t.Errorf("Triangle(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}
