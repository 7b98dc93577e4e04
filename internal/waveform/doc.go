// Package waveform turns a sound's waveform document into the raw level
// signal that drives the meter.
package waveform
