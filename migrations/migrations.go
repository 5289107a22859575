// Package migrations holds the schema migrations shipped with the server.
package migrations

import "embed"

// FS contains every NNN_name.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
