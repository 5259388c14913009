// Package migrations embeds the ordered SQL schema files applied by cmd/migrate.
// Files are named NNN_description.sql and are never edited once applied.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
