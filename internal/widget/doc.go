// Package widget models an embeddable audio player widget and wraps its
// unreliable callback API.
//
// Widget is the narrow control surface every backend implements: the
// scripted simulator in widget/sim and the real embed driven through a
// headless browser in widget/browser. Client layers poll.Do over the
// accessors with per-query acceptance rules, so callers get a loaded sound
// list instead of the empty placeholder the widget reports while loading.
package widget
