// Package seed reads and writes the YAML documents used to seed, back up and
// restore a content store. A default document ships embedded in the binary.
package seed
