// Package migrations embeds the schema migrations for the dashboard store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql / NNN_name.down.sql files.
//
//go:embed *.sql
var FS embed.FS
