// Package contentstore persists meditation content.
//
// The default backend is SQLite (modernc.org/sqlite) with an embedded schema
// and a schema version check; Open switches to the MongoDB backend in the
// mongostore subpackage when configured. Both backends implement
// content.Store: records are decoded into typed values and validated before
// they leave the store.
package contentstore
