// Package player ties a widget to the level meter: it owns the widget
// client, the waveform profile of the current sound and the smoothed level
// that follows it.
//
// Settings helpers convert the [poll] and [smoother] config sections into
// poll options and level parameters.
package player
