package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate runs a goose command ("up", "down", "status", "version" or
// "reset") against the embedded migrations. A nil database is a no-op.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	switch command {
	case "", "up":
		return goose.UpContext(ctx, database, "migrations")
	case "down":
		return goose.DownContext(ctx, database, "migrations")
	case "status":
		return goose.StatusContext(ctx, database, "migrations")
	case "version":
		return goose.VersionContext(ctx, database, "migrations")
	case "reset":
		return goose.ResetContext(ctx, database, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// RunMigrations applies every pending migration.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}
