package textutil

import (
	"math"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{999 * time.Millisecond, "0:00"},
		{65 * time.Second, "1:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1k"},
		{1234, "1.2k"},
		{3_400_000, "3.4m"},
		{2_000_000_000, "2b"},
		{-1500, "-1.5k"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatIntAndTitle(t *testing.T) {
	if got := FormatInt(1234567); got != "1,234,567" {
		t.Fatalf("FormatInt = %q", got)
	}
	if got := Title("  deep   house "); got != "Deep House" {
		t.Fatalf("Title = %q", got)
	}
	if got := Title("   "); got != "" {
		t.Fatalf("Title(blank) = %q", got)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Static Bloom (Extended Mix) - a")
	want := []string{"static", "bloom", "extended", "mix"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
	if NewFingerprint("a - b") != nil {
		t.Fatal("expected nil fingerprint for text without tokens")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "night drive", "Night Drive", 1},
		{"reordered", "drive night", "night drive", 1},
		{"disjoint", "glass harbor", "static bloom", 0},
		{"half", "night drive", "nite drive", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(NewFingerprint(tt.a), NewFingerprint(tt.b))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
	if CosineSimilarity(nil, NewFingerprint("x y z")) != 0 {
		t.Fatal("nil fingerprint should score 0")
	}
}
