// Package server exposes the meditation HTTP API: session composition,
// metronome preferences, narration proxying and the bearer-protected admin
// surface for content management. A Server holds an flock on the configured
// lock path so only one instance serves a data directory at a time.
package server
