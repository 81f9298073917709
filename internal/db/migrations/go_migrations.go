// Package migrations holds the goose migrations for the portfolio schema.
// Plain SQL files cover portable tables; Go migrations cover DDL that
// differs per database driver.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
