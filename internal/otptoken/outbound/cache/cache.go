// Package cache keeps otp token records in redis hashes that expire on
// their own.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
)

const (
	fieldToken     = "token"
	fieldCreatedAt = "created_at"
)

// ErrCorruptRecord is returned when a stored hash is missing fields.
var ErrCorruptRecord = errors.New("cache: corrupt otp token record")

// TokenStore implements the token store on redis. Keys are
// "<prefix>:<table>:<action>:<column>" and live for expire.
type TokenStore struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
	prefix string
	expire time.Duration
}

func NewTokenStore(client redis.UniversalClient, ins instrument.Instrumentation, prefix, table string, expire time.Duration) *TokenStore {
	parts := []string{table}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}

	return &TokenStore{
		client: client,
		ins:    ins,
		prefix: strings.Join(parts, ":"),
		expire: expire,
	}
}

func (s *TokenStore) key(column, action string) string {
	return s.prefix + ":" + action + ":" + column
}

func (s *TokenStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otptoken.outbound.cache").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *TokenStore) Find(ctx context.Context, column, action string) (rec *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "TokenStore.Find")
	defer func() { endSpan(span, err) }()

	values, err := s.client.HGetAll(ctx, s.key(column, action)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(values) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	token, ok := values[fieldToken]
	if !ok {
		return nil, ErrCorruptRecord
	}
	nanos, err := strconv.ParseInt(values[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return &entity.Record{
		Column:    column,
		Action:    action,
		Token:     token,
		CreatedAt: time.Unix(0, nanos).UTC(),
	}, nil
}

// Replace rewrites the hash and its TTL in one transaction.
func (s *TokenStore) Replace(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "TokenStore.Replace")
	defer func() { endSpan(span, err) }()

	key := s.key(rec.Column, rec.Action)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldToken, rec.Token, fieldCreatedAt, strconv.FormatInt(rec.CreatedAt.UnixNano(), 10))
		pipe.PExpire(ctx, key, s.expire)
		return nil
	})
	return err
}

func (s *TokenStore) Delete(ctx context.Context, column, action string) (err error) {
	ctx, span := s.startSpan(ctx, "TokenStore.Delete")
	defer func() { endSpan(span, err) }()

	err = s.client.Del(ctx, s.key(column, action)).Err()
	return err
}

// DeleteCreatedBefore is a no-op: redis drops records when their TTL ends.
func (s *TokenStore) DeleteCreatedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}
