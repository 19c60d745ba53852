// Package config loads, normalizes, and validates Spirare configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPIRARE_ADMIN_PASSWORD and GEMINI_API_KEY. The Config type centralizes every
// knob the server, the player and the CLI need, so the content backend, the
// narration provider and the playback timings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
