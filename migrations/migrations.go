// Package migrations embeds the SQL migrations applied at startup.
package migrations

import "embed"

// FS holds the up/down migration files.
//
//go:embed *.sql
var FS embed.FS
