// internal/database/migrate.go
//
// Embedded schema migrations, applied with goose at boot.  The SQL files
// live under migrations/ and ship inside the binary, so a fresh database
// reaches the current schema with no external tooling.
package database

import (
	"embed"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate brings the schema up to date.  Safe to call on every boot; goose
// records applied versions in its own bookkeeping table.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.Up(db.DB, "migrations")
}
