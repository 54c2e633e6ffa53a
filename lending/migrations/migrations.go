package migrations

import "embed"

// MigrationFiles holds one goose directory per sql dialect.
//
//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var MigrationFiles embed.FS
