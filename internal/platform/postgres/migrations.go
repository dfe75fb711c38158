package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// MigrationsDir is the directory, relative to MigrationsFS, that goose reads.
const MigrationsDir = "migrations"

// MigrationsFS returns the goose SQL migrations compiled into the binary,
// so the CLI and integration tests run the same schema without depending on
// the working directory.
func MigrationsFS() fs.FS {
	return embeddedMigrations
}
