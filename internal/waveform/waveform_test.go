package waveform_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"soundstage/internal/waveform"
)

func TestNormalize(t *testing.T) {
	got := waveform.Normalize([]int{0, 70, 140, 200}, 140)
	want := []float64{0, 0.5, 1, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}

	got = waveform.Normalize([]int{2, 4, 8}, 0)
	if diff := cmp.Diff([]float64{0.25, 0.5, 1}, got); diff != "" {
		t.Fatalf("max-scaled normalize mismatch (-want +got):\n%s", diff)
	}
	if got := waveform.Normalize([]int{0, 0}, 0); got[0] != 0 || got[1] != 0 {
		t.Fatalf("silent waveform should stay zero, got %v", got)
	}
}

func TestSmoothPreservesQuadratics(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		x := float64(i) / 24
		values[i] = 0.2 + 0.5*x - 0.3*x*x
	}
	got := waveform.Smooth(values, 3)
	if diff := cmp.Diff(values, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("quadratic changed by smoothing (-want +got):\n%s", diff)
	}
}

func TestSmoothFlattensSpikes(t *testing.T) {
	values := make([]float64, 21)
	for i := range values {
		values[i] = 0.3
	}
	values[10] = 1
	got := waveform.Smooth(values, 4)
	if got[10] >= 0.8 {
		t.Fatalf("spike barely reduced: %v", got[10])
	}
	if math.Abs(got[0]-0.3) > 1e-9 || math.Abs(got[20]-0.3) > 1e-9 {
		t.Fatalf("flat edges changed: %v %v", got[0], got[20])
	}
	if diff := cmp.Diff(values, waveform.Smooth(values, 0)); diff != "" {
		t.Fatalf("zero window should copy (-want +got):\n%s", diff)
	}
}

func TestProfileLevel(t *testing.T) {
	p := waveform.NewProfile(waveform.Data{Height: 10, Samples: []int{0, 10, 0, 10, 0}}, 0)
	tests := []struct {
		rel  float64
		want float64
	}{
		{0, 0},
		{0.125, 0.5},
		{0.25, 1},
		{1, 0},
		{-1, 0},
		{2, 0},
		{math.NaN(), 0},
	}
	for _, tc := range tests {
		if got := p.Level(tc.rel); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Level(%v) = %v, want %v", tc.rel, got, tc.want)
		}
	}
	if p.Len() != 5 {
		t.Fatalf("Len = %d", p.Len())
	}

	single := waveform.NewProfile(waveform.Data{Samples: []int{4}}, waveform.DefaultWindow)
	if single.Level(0.7) != 1 {
		t.Fatalf("single-sample profile = %v", single.Level(0.7))
	}
	for _, v := range waveform.NewProfile(waveform.Data{Height: 1, Samples: []int{0, 1, 0, 1, 1, 0, 1}}, 2).Levels() {
		if v < 0 || v > 1 {
			t.Fatalf("level %v outside 0..1", v)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			if r.Header.Get("User-Agent") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"width":3,"height":140,"samples":[10,70,140]}`))
		case "/empty.json":
			_, _ = w.Write([]byte(`{"width":0,"height":140,"samples":[]}`))
		case "/garbage.json":
			_, _ = w.Write([]byte(`<html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := waveform.NewFetcher(nil, time.Second, nil)
	data, err := f.Fetch(context.Background(), srv.URL+"/ok.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if diff := cmp.Diff(waveform.Data{Width: 3, Height: 140, Samples: []int{10, 70, 140}}, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	for path, wantErr := range map[string]string{
		"/missing.json": "returned 404",
		"/empty.json":   "no samples",
		"/garbage.json": "decode waveform",
	} {
		_, err := f.Fetch(context.Background(), srv.URL+path)
		if err == nil || !strings.Contains(err.Error(), wantErr) {
			t.Errorf("Fetch(%s) error = %v, want %q", path, err, wantErr)
		}
	}
	if _, err := f.Fetch(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty url")
	}
}
