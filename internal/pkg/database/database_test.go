package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

var testMigrations = fstest.MapFS{
	"sqlite/00001_widgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE widgets (name TEXT PRIMARY KEY);

-- +goose Down
DROP TABLE widgets;
`)},
}

func TestResolverSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")

	r := NewResolver(Config{
		Connections: map[string]ConnectionConfig{
			"default": {Driver: DriverSQLite, DSN: dsn, MaxOpenConns: 1},
		},
		Migrate:    true,
		Migrations: testMigrations,
	})
	t.Cleanup(func() { _ = r.Close() })

	db, err := r.Connection(ctx, "default")
	if err != nil {
		t.Fatalf("Connection() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO widgets (name) VALUES ($1)`, "gear"); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	again, err := r.Connection(ctx, "default")
	if err != nil {
		t.Fatalf("Connection() second call error = %v", err)
	}
	if again != db {
		t.Error("Connection() returned a different pool on the second call")
	}

	if got := r.Driver("default"); got != DriverSQLite {
		t.Errorf("Driver() = %q", got)
	}
}

func TestResolverErrors(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(Config{
		Connections: map[string]ConnectionConfig{
			"odd": {Driver: "oracle", DSN: "x"},
		},
	})

	if _, err := r.Connection(ctx, "missing"); !errors.Is(err, ErrConnectionNotDefined) {
		t.Errorf("Connection(missing) error = %v", err)
	}
	if _, err := r.Connection(ctx, "odd"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Connection(odd) error = %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := r.Connection(ctx, "odd"); !errors.Is(err, ErrResolverClosed) {
		t.Errorf("Connection() after Close error = %v", err)
	}
}

func TestDialect(t *testing.T) {
	for driver, want := range map[string]string{DriverPgx: "postgres", DriverPostgres: "postgres", DriverSQLite: "sqlite3", "mysql": ""} {
		if got := Dialect(driver); got != want {
			t.Errorf("Dialect(%q) = %q, want %q", driver, got, want)
		}
	}
}
