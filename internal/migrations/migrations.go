// Package migrations embeds the goose migrations for the clipboard backend
// (PostgreSQL) and for the local session store (SQLite).
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
