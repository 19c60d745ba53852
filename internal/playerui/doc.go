// Package playerui renders a playback session in the terminal with Bubble
// Tea. The model never mutates playback state itself: key presses call the
// machine's operations and the view is redrawn from the snapshots the
// machine publishes.
//
// Keys: enter starts, space pauses or resumes (and starts a fresh session),
// s skips the current practice, f finishes and resets, r restarts and q
// quits.
package playerui
