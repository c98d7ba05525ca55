// Package migrations embeds the SQL schema migration files and
// registers them with the database package at init time. The indirect
// registration avoids an import cycle between the two packages.
package migrations

import (
	"embed"

	"github.com/nerrad567/switchboard/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
