// Package narration turns meditation phrases into spoken audio.
//
// Three providers implement Synthesizer: an HTTP client for a TTS proxy,
// Google Gemini speech generation through google.golang.org/genai, and a
// disabled provider that always returns ErrDisabled so playback falls back
// to text only. New selects one from configuration.
package narration
