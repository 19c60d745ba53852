// Package content defines the typed records behind a meditation: the fixed
// stage and practice vocabulary, the singleton Structure, Themes with their
// phrase overrides, base phrase pools, background Songs and the metronome
// preference. It also declares the repository ports that storage backends
// implement.
//
// Every record exposes Validate so storage adapters can reject malformed
// documents at the boundary; code above the store only sees records that
// passed validation.
package content
