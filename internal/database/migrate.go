package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/iliyamo/multi-user-blog/internal/logutil"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies every pending schema migration for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect goose.Dialect
	switch driver {
	case DriverMySQL, "":
		driver, dialect = DriverMySQL, goose.DialectMySQL
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("unable to load migrations, cause %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("unable to prepare migrations, cause %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("unable to migrate, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("applied migration")
	}
	return nil
}
