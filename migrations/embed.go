// Package migrations holds the schema as ordered NNNN_name.up.sql files.
// database.Migrate applies the up files at server start; the down files
// are for manual rollback only.
package migrations

import "embed"

//go:embed *.up.sql *.down.sql
var FS embed.FS
