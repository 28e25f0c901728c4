package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// goose keeps dialect and base FS in package state.
var gooseMu sync.Mutex

var dialects = map[string]string{
	DriverPgx:      "postgres",
	DriverPostgres: "postgres",
	DriverSQLite:   "sqlite3",
}

var migrationDirs = map[string]string{
	DriverPgx:      "postgres",
	DriverPostgres: "postgres",
	DriverSQLite:   "sqlite",
}

// Dialect returns the goose dialect for a driver, or "" when unsupported.
func Dialect(driver string) string {
	return dialects[driver]
}

// Migrate applies every pending migration in the driver's directory of fsys.
func Migrate(ctx context.Context, db *sqlx.DB, driver string, fsys fs.FS) error {
	dir, ok := migrationDirs[driver]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("database: migrations directory %q: %w", dir, err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(Dialect(driver)); err != nil {
		return fmt.Errorf("database: set dialect: %w", err)
	}
	goose.SetBaseFS(sub)
	goose.SetLogger(goose.NopLogger())

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("database: run migrations: %w", err)
	}

	slog.InfoContext(ctx, "migrations completed successfully", "driver", driver)
	return nil
}
