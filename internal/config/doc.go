// Package config loads, normalizes, and validates soundstage configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SOUNDSTAGE_TRACK_URL. Watch re-reads the file on change so the smoother
// can be retuned while a player runs.
package config
