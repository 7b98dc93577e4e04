// Package poll wraps unreliable, callback-style queries into bounded,
// cancellable calls.
//
// Embedded third-party widgets answer accessor calls through callbacks that
// may fire late, twice, never, or with a placeholder while the widget is
// still loading. Do retries such a query until a reply passes the caller's
// success predicate, a cancel predicate or context stops it, or the attempt
// budget runs out. The two failure modes stay distinct: ErrCanceled is the
// caller's own doing and benign, ErrExhausted means the external side never
// answered usefully and deserves a diagnostic.
//
// Tracker and Token make "only the latest request matters" explicit: each
// logical operation begins a token, a newer Begin supersedes older tokens,
// and Token.Canceled plugs straight into WithCanceled.
package poll
