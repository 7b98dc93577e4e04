// Package logs reads the soundstage log file: the last N lines, everything
// after a byte offset, and a follow mode that wakes on file writes.
//
// The meter writes its log only to the file while the full-screen view is
// up, so `soundstage logs --follow` in a second terminal is how its
// warnings are watched.
package logs
