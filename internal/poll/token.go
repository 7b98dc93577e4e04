package poll

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Tracker hands out supersession tokens. Beginning a new operation
// invalidates every token issued before it, so only the latest caller's
// work keeps going.
type Tracker struct {
	mu      sync.Mutex
	current *Token
}

// Token identifies one logical operation.
type Token struct {
	id      string
	tracker *Tracker
	once    sync.Once
	done    chan struct{}
}

// Begin issues a new token and supersedes the previous one.
func (t *Tracker) Begin() *Token {
	tok := &Token{
		id:      uuid.NewString(),
		tracker: t,
		done:    make(chan struct{}),
	}
	t.mu.Lock()
	prev := t.current
	t.current = tok
	t.mu.Unlock()
	if prev != nil {
		prev.invalidate()
	}
	return tok
}

// Latest returns the current token, or nil before the first Begin.
func (t *Tracker) Latest() *Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// End retires tok. It is a no-op when tok was already superseded.
func (t *Tracker) End(tok *Token) {
	if tok == nil {
		return
	}
	t.mu.Lock()
	if t.current == tok {
		t.current = nil
	}
	t.mu.Unlock()
	tok.invalidate()
}

// ID returns the token's unique identifier.
func (tok *Token) ID() string {
	return tok.id
}

// Canceled reports whether a newer token superseded tok or tok was ended.
// It has the shape WithCanceled expects.
func (tok *Token) Canceled() bool {
	select {
	case <-tok.done:
		return true
	default:
		return false
	}
}

// Done is closed when tok is superseded or ended.
func (tok *Token) Done() <-chan struct{} {
	return tok.done
}

// Context derives a context canceled with ErrSuperseded once tok is
// invalidated. Callers must call the returned cancel func.
func (tok *Token) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		select {
		case <-tok.done:
			cancel(ErrSuperseded)
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(context.Canceled) }
}

func (tok *Token) invalidate() {
	tok.once.Do(func() { close(tok.done) })
}
