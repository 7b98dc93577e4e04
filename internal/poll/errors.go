package poll

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrExhausted means every attempt ran without an acceptable reply.
	ErrExhausted = errors.New("ran out of attempts")
	// ErrCanceled means the caller stopped wanting the result.
	ErrCanceled = errors.New("poll canceled")
	// ErrSuperseded is the cancellation cause when a newer operation replaced this one.
	ErrSuperseded = errors.New("superseded by a newer operation")
)

// Error describes a failed poll. It unwraps to ErrExhausted, ErrCanceled, or
// the unexpected failure, plus any cancellation cause.
type Error struct {
	Name     string
	Attempts int
	Elapsed  time.Duration
	Err      error
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("poll")
	if e.Name != "" {
		b.WriteByte(' ')
		b.WriteString(e.Name)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Cause != nil && !errors.Is(e.Err, e.Cause) {
		fmt.Fprintf(&b, " (%v)", e.Cause)
	}
	fmt.Fprintf(&b, " after %d attempt", e.Attempts)
	if e.Attempts != 1 {
		b.WriteByte('s')
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// IsCanceled reports whether err is a benign cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsExhausted reports whether err means the external side never produced an
// acceptable answer.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}

type panicError struct {
	where string
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", p.where, p.value)
}
