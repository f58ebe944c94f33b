package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded goose migration files.
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}

// Migrate applies every pending migration using a database/sql handle over pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	if pool == nil {
		return fmt.Errorf("database pool must not be nil")
	}
	fsys, err := Migrations()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if log != nil {
		for _, res := range results {
			log.Infow("migration_applied", "version", res.Source.Version, "path", res.Source.Path, "duration", res.Duration.String())
		}
	}
	return nil
}
