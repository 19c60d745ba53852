// Package services defines shared utilities consumed by the composer, the
// HTTP layer and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp categories, stages and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the public error taxonomy (not found, validation, unavailable,
//     unauthorized) and their HTTP status codes.
//
// Use these helpers when wiring new handlers or storage adapters so
// operational behaviour (error handling, observability) stays uniform.
package services
