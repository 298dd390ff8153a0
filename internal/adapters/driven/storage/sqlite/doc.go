// Package sqlite provides the SQLite implementation of the note and task stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One Store serves both ports through a single connection:
//
//   - NoteStore: captured source text
//   - TaskStore: extracted commitments, deleted with their note
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.brain/data/brain.db
//
// # Time Values
//
// Timestamps are stored as fixed-width UTC text so that lexical order is
// chronological. Due dates are stored as YYYY-MM-DD text.
package sqlite
