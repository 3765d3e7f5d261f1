// Package migrations embeds the simulator SQLite schema.
package migrations

import "embed"

// FS holds the forward-only migrations, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
