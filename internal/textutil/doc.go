// Package textutil formats numbers, durations, and titles for terminal
// output and scores title similarity by token fingerprints.
//
// Fingerprints are term-frequency vectors over lowercase alphanumeric
// tokens of at least two characters. CosineSimilarity compares them.
package textutil
