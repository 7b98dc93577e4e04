// Package preflight provides readiness checks for the filesystem paths and
// external endpoints soundstage depends on.
//
// The CLI "soundstage status" command prints RunAll's results next to the
// player snapshot. Each check returns a Result rather than an error so a
// failing check never hides the others.
package preflight
