// Package migrations embeds the SQL schema applied by
// [github.com/tallowmere/minegen/internal/database.ConnectAndMigrate].
package migrations

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
