// Package memory provides in-memory implementations of the driven storage
// and config ports. Nothing is persisted.
package memory
