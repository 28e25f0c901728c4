package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
)

var (
	// ErrInvalidIdentifier is returned for a table or column name that is not a plain identifier.
	ErrInvalidIdentifier = errors.New("db: invalid sql identifier")

	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type DB struct {
	conn *sqlx.DB
	ins  instrument.Instrumentation
}

func NewDB(conn *sqlx.DB, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// mapError turns sql.ErrNoRows into goerror.ErrNotFound. Every other error,
// constraint violations included, is returned as is.
func (s *DB) mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otptoken.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// quote returns name as a double quoted identifier after checking it.
func quote(name string) (string, error) {
	if !reIdentifier.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}
