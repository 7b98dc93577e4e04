package level_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"soundstage/internal/level"
)

func TestStepFollowsGeometricApproach(t *testing.T) {
	p := level.DefaultParams()
	displayed := 0.0
	for n := 1; n <= 20; n++ {
		var converged bool
		displayed, converged = level.Step(displayed, 1, p)
		if converged {
			t.Fatalf("converged early at step %d", n)
		}
		want := 1 - math.Pow(1-1/p.Divisor, float64(n))
		if math.Abs(displayed-want) > 1e-9 {
			t.Fatalf("step %d: got %v, want %v", n, displayed, want)
		}
	}
}

func TestStepSnapsWithinEpsilon(t *testing.T) {
	p := level.DefaultParams()
	next, converged := level.Step(0.995, 1, p)
	if !converged || next != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", next, converged)
	}
}

func TestStepNeverOvershoots(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		mode     level.Mode
	}{
		{"ease up", 0, 1, level.ModeEase},
		{"ease down", 1, 0, level.ModeEase},
		{"ease negative", 0.3, -0.7, level.ModeEase},
		{"peak rise", 0.2, 0.9, level.ModePeakDecay},
		{"peak decay", 0.9, 0.1, level.ModePeakDecay},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := level.DefaultParams()
			p.Mode = tc.mode
			lo, hi := math.Min(tc.from, tc.to), math.Max(tc.from, tc.to)
			prev := tc.from
			for _, v := range level.Trace(tc.from, tc.to, p, 500) {
				if v < lo || v > hi {
					t.Fatalf("value %v left [%v, %v]", v, lo, hi)
				}
				if math.Abs(tc.to-v) > math.Abs(tc.to-prev) {
					t.Fatalf("moved away from target: %v -> %v", prev, v)
				}
				prev = v
			}
			if prev != tc.to {
				t.Fatalf("did not converge: last = %v", prev)
			}
		})
	}
}

func TestTraceSmallDivisor(t *testing.T) {
	p := level.Params{Divisor: 2, Epsilon: 0.2, Cadence: time.Millisecond}

	got := level.Trace(0, 1, p, 0)
	want := []float64{0.5, 0.75, 0.875, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ease trace mismatch (-want +got):\n%s", diff)
	}

	p.Mode = level.ModePeakDecay
	if diff := cmp.Diff([]float64{1}, level.Trace(0, 1, p, 0)); diff != "" {
		t.Fatalf("peak rise mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5, 0.25, 0.125, 0}, level.Trace(1, 0, p, 0)); diff != "" {
		t.Fatalf("peak decay mismatch (-want +got):\n%s", diff)
	}
}

func TestStepsToConvergeMatchesTrace(t *testing.T) {
	tests := []struct {
		from, to float64
		divisor  float64
	}{
		{0, 1, 10},
		{1, 0, 10},
		{0, 0.5, 4},
		{0.25, 0.75, 3},
		{0.5, 0.505, 10},
	}
	for _, tc := range tests {
		p := level.DefaultParams()
		p.Divisor = tc.divisor
		trace := level.Trace(tc.from, tc.to, p, 10000)
		if got := level.StepsToConverge(tc.from, tc.to, p); got != len(trace) {
			t.Errorf("StepsToConverge(%v, %v, k=%v) = %d, trace has %d", tc.from, tc.to, tc.divisor, got, len(trace))
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    level.Mode
		wantErr bool
	}{
		{"", level.ModeEase, false},
		{"Ease", level.ModeEase, false},
		{" peak-decay ", level.ModePeakDecay, false},
		{"peak_decay", level.ModePeakDecay, false},
		{"peak", level.ModePeakDecay, false},
		{"bounce", level.ModeEase, true},
	}
	for _, tc := range tests {
		got, err := level.ParseMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if level.ModePeakDecay.String() != "peak-decay" || level.Mode(9).String() != "mode(9)" {
		t.Fatal("unexpected Mode.String output")
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*level.Params)
		wantErr bool
	}{
		{"defaults", func(*level.Params) {}, false},
		{"divisor one", func(p *level.Params) { p.Divisor = 1 }, true},
		{"divisor nan", func(p *level.Params) { p.Divisor = math.NaN() }, true},
		{"zero epsilon", func(p *level.Params) { p.Epsilon = 0 }, true},
		{"zero cadence", func(p *level.Params) { p.Cadence = 0 }, true},
	}
	for _, tc := range tests {
		p := level.DefaultParams()
		tc.mutate(&p)
		if err := p.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
