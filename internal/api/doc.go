// Package api defines the wire-format types served by the HTTP API and
// printed by the CLI's --json output. It translates content records into
// transport-friendly DTOs so clients never couple to storage types.
//
// DTOs use camelCase JSON tags. Timestamps are RFC3339 with milliseconds.
// Every failed request answers with ErrorResponse.
package api
