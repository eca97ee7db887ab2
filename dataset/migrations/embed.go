// Package migrations embeds the SQL schema of the dataset export.
package migrations

import "embed"

// FS holds the migration files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
