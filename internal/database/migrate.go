package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

var gooseDialects = map[Dialect]string{
	MySQL:    "mysql",
	Postgres: "postgres",
	SQLite:   "sqlite3",
}

// Migrate applies the embedded migrations for the pool's dialect.
func Migrate(ctx context.Context, db *DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialects[db.Dialect]); err != nil {
		return fmt.Errorf("migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations/"+string(db.Dialect)); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
