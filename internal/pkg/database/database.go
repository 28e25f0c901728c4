package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers "postgres"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite" // registers "sqlite"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrConnectionNotDefined is returned for a connection name missing from the config.
	ErrConnectionNotDefined = errors.New("database: connection is not defined")
	// ErrUnsupportedDriver is returned for a driver outside the supported set.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")
	// ErrResolverClosed is returned by Connection after Close.
	ErrResolverClosed = errors.New("database: resolver is closed")
)

// ConnectionConfig describes one named connection.
type ConnectionConfig struct {
	Driver          string `validate:"required,oneof=pgx postgres sqlite"`
	DSN             string `validate:"required"`
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config configures a Resolver.
type Config struct {
	Connections map[string]ConnectionConfig
	// Migrate runs the migrations in Migrations when a connection is opened.
	Migrate bool
	// Migrations holds one directory per dialect: "postgres" and "sqlite".
	Migrations fs.FS
	// PingAttempts bounds the startup ping retries. Defaults to 5.
	PingAttempts uint64
}

// Resolver lazily opens and caches named connections.
type Resolver struct {
	cfg Config

	mu     sync.Mutex
	conns  map[string]*sqlx.DB
	closed bool
}

func NewResolver(cfg Config) *Resolver {
	if cfg.PingAttempts == 0 {
		cfg.PingAttempts = 5
	}
	return &Resolver{cfg: cfg, conns: make(map[string]*sqlx.DB)}
}

// Connection returns the cached connection for name, opening it on first use.
func (r *Resolver) Connection(ctx context.Context, name string) (*sqlx.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrResolverClosed
	}
	if db, ok := r.conns[name]; ok {
		return db, nil
	}

	cc, ok := r.cfg.Connections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrConnectionNotDefined, name)
	}

	db, err := r.open(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("database: connection %q: %w", name, err)
	}

	r.conns[name] = db
	slog.InfoContext(ctx, "database connected", "connection", name, "driver", cc.Driver)
	return db, nil
}

// Driver returns the configured driver of a connection, or "".
func (r *Resolver) Driver(name string) string {
	return r.cfg.Connections[name].Driver
}

func (r *Resolver) open(ctx context.Context, cc ConnectionConfig) (*sqlx.DB, error) {
	if Dialect(cc.Driver) == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cc.Driver)
	}

	db, err := sqlx.Open(cc.Driver, cc.DSN)
	if err != nil {
		return nil, err
	}

	if cc.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cc.MaxOpenConns)
	}
	if cc.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cc.MaxIdleConns)
	}
	if cc.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cc.ConnMaxLifetime)
	}

	backoff := retry.WithMaxRetries(r.cfg.PingAttempts, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database ping failed", "driver", cc.Driver, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("ping: %w", err), db.Close())
	}

	if r.cfg.Migrate && r.cfg.Migrations != nil {
		if err := Migrate(ctx, db, cc.Driver, r.cfg.Migrations); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}

	return db, nil
}

// Close closes every opened connection.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	var errs []error
	for name, db := range r.conns {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: close %q: %w", name, err))
		}
	}
	r.conns = nil

	return errors.Join(errs...)
}
