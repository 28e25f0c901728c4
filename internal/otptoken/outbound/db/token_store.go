package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
)

type tokenRow struct {
	Column    string    `db:"column"`
	Action    string    `db:"action"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

// TokenStore keeps otp token records in one table.
type TokenStore struct {
	db *DB

	qFind    string
	qReplace string
	qDelete  string
	qPrune   string
}

// TokenStore returns a store over table, which must already exist with the
// otp_tokens shape.
func (s *DB) TokenStore(table string) (*TokenStore, error) {
	t, err := quote(table)
	if err != nil {
		return nil, err
	}

	return &TokenStore{
		db: s,
		qFind: s.conn.Rebind(fmt.Sprintf(
			`SELECT "column", action, token, created_at FROM %s WHERE "column" = ? AND action = ?`, t)),
		qReplace: s.conn.Rebind(fmt.Sprintf(
			`INSERT INTO %s ("column", action, token, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT ("column", action) DO UPDATE SET token = excluded.token, created_at = excluded.created_at`, t)),
		qDelete: s.conn.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE "column" = ? AND action = ?`, t)),
		qPrune:  s.conn.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE created_at < ?`, t)),
	}, nil
}

func (ts *TokenStore) Find(ctx context.Context, column, action string) (rec *entity.Record, err error) {
	ctx, span := ts.db.startSpan(ctx, "TokenStore.Find")
	defer func() { ts.db.endSpan(span, err) }()

	var row tokenRow
	err = ts.db.mapError(ts.db.conn.GetContext(ctx, &row, ts.qFind, column, action))
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entity.Record{
		Column:    row.Column,
		Action:    row.Action,
		Token:     row.Token,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

func (ts *TokenStore) Replace(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := ts.db.startSpan(ctx, "TokenStore.Replace")
	defer func() { ts.db.endSpan(span, err) }()

	_, err = ts.db.conn.ExecContext(ctx, ts.qReplace, rec.Column, rec.Action, rec.Token, rec.CreatedAt.UTC())
	err = ts.db.mapError(err)
	return err
}

func (ts *TokenStore) Delete(ctx context.Context, column, action string) (err error) {
	ctx, span := ts.db.startSpan(ctx, "TokenStore.Delete")
	defer func() { ts.db.endSpan(span, err) }()

	_, err = ts.db.conn.ExecContext(ctx, ts.qDelete, column, action)
	err = ts.db.mapError(err)
	return err
}

func (ts *TokenStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (n int64, err error) {
	ctx, span := ts.db.startSpan(ctx, "TokenStore.DeleteCreatedBefore")
	defer func() { ts.db.endSpan(span, err) }()

	res, err := ts.db.conn.ExecContext(ctx, ts.qPrune, cutoff.UTC())
	if err != nil {
		err = ts.db.mapError(err)
		return 0, err
	}

	n, err = res.RowsAffected()
	return n, err
}
