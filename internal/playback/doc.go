// Package playback walks a meditation script stage by stage.
//
// Machine is an explicit finite-state machine owning the countdown, the
// metronome, the narration queue and the background-track fader. Every
// transition that starts one of those resources tears down the existing one
// first, so at most one of each is active per machine. UI layers observe the
// machine through immutable Snapshots delivered by Subscribe and drive it only
// through the named operations.
//
// Narrator serializes narration clips: a replacing request invalidates the
// clip in flight through a generation token, and synthesis failures are
// logged and skipped.
package playback
