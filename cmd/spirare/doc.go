// Package main hosts the Spirare CLI entrypoint and command graph.
//
// The Cobra command tree serves the HTTP API, composes sessions straight from
// the local content store, plays them in the terminal, and maintains the
// store (seed, backup, drop). Configuration resolution and store wiring live
// in commandContext so subcommands stay declarative; behaviour belongs in the
// internal packages.
package main
