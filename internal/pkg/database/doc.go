// Package database opens named sqlx connections on first use, pings them
// with backoff, optionally runs goose migrations, and closes them together.
//
// Supported drivers are "pgx" (jackc/pgx stdlib), "postgres" (lib/pq) and
// "sqlite" (modernc.org/sqlite). All of them accept $N placeholders.
package database
