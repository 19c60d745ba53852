// Package textutil provides text helpers shared by the content model, the CLI
// and the backup writer.
//
// The primary use cases are:
//   - Normalizing category keys into stable lowercase slugs
//   - Turning practice identifiers such as initial_breathing into labels
//   - Sanitizing filenames for backup documents
package textutil
