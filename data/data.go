// Package data embeds the SQL migrations shipped with the binary.
package data

import (
	"embed"
	"io/fs"
)

//go:embed sql/migrations
var migrationsFS embed.FS

// Migrations returns the migration files rooted at the migrations
// directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "sql/migrations")
}
