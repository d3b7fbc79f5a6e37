package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies every pending migration.
func (db *DB) Migrate(ctx context.Context) error {
	return db.runGoose(ctx, func(ctx context.Context, conn *sql.DB) error {
		return goose.UpContext(ctx, conn, migrationsDir)
	})
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	return db.runGoose(ctx, func(ctx context.Context, conn *sql.DB) error {
		return goose.DownContext(ctx, conn, migrationsDir)
	})
}

// MigrationStatus prints the applied state of each migration through goose's logger.
func (db *DB) MigrationStatus(ctx context.Context) error {
	return db.runGoose(ctx, func(ctx context.Context, conn *sql.DB) error {
		return goose.StatusContext(ctx, conn, migrationsDir)
	})
}

func (db *DB) runGoose(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := fn(ctx, sqlDB); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	return nil
}
