// Package level smooths a noisy raw audio level into a displayed level a UI
// can draw without jitter.
//
// Step is the pure smoothing rule: move a fixed fraction 1/k of the remaining
// gap each frame and snap once within epsilon. State owns a raw/displayed pair
// for one player and runs the frame loop only while the two differ.
package level
