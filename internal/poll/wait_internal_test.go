package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForExhaustsSchedule(t *testing.T) {
	schedule := []time.Duration{0, time.Millisecond, 2 * time.Millisecond}
	var calls int
	_, err := waitFor(context.Background(), schedule, func() (bool, bool) {
		calls++
		return false, false
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if calls != len(schedule) {
		t.Fatalf("cond called %d times, want %d", calls, len(schedule))
	}
}

func TestNewSettingsDefaults(t *testing.T) {
	s := newSettings([]Option{WithMaxAttempts(0), WithInterval(-1), nil})
	if s.maxAttempts != DefaultMaxAttempts {
		t.Fatalf("maxAttempts = %d", s.maxAttempts)
	}
	if s.interval != DefaultInterval || s.receiveTimeout != DefaultInterval {
		t.Fatalf("interval = %v receive = %v", s.interval, s.receiveTimeout)
	}
	if s.canceled() {
		t.Fatal("default cancel predicate should never cancel")
	}

	s = newSettings([]Option{WithInterval(20 * time.Millisecond), WithReceiveTimeout(100 * time.Millisecond)})
	if s.interval != 20*time.Millisecond || s.receiveTimeout != 100*time.Millisecond {
		t.Fatalf("receive timeout override lost: %+v", s)
	}
}
