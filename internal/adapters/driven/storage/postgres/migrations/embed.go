// Package migrations holds the versioned schema scripts of the Postgres store.
package migrations

import "embed"

// FS contains the migration scripts.
//
//go:embed *.sql
var FS embed.FS
