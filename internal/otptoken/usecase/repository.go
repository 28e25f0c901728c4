package usecase

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/hash"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// TokenStore persists raw records keyed by (column, action).
type TokenStore interface {
	// Find returns nil, nil when no record exists.
	Find(ctx context.Context, column, action string) (*entity.Record, error)
	// Replace atomically replaces any record for (rec.Column, rec.Action).
	Replace(ctx context.Context, rec entity.Record) error
	Delete(ctx context.Context, column, action string) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRepository issues and checks tokens for a user.
type TokenRepository interface {
	// Create replaces the user's token for action and returns the plaintext code.
	Create(ctx context.Context, user entity.CanSendOtpToken, action, field string) (string, error)
	// Exists reports whether token is the user's live token for action.
	Exists(ctx context.Context, user entity.CanSendOtpToken, token, action, field string) (bool, error)
	// RecentlyCreatedToken reports whether the throttle window is still open.
	RecentlyCreatedToken(ctx context.Context, user entity.CanSendOtpToken, action, field string) (bool, error)
	Delete(ctx context.Context, user entity.CanSendOtpToken, action, field string) error
	// DeleteExpired removes every expired record and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// RepositoryConfig configures a Repository.
type RepositoryConfig struct {
	Store  TokenStore
	Hasher hash.Hash
	Clock  clock.Clocker
	// Expire is how long a token stays valid.
	Expire time.Duration
	// Throttle is the minimum gap between two tokens for the same
	// (column, action). Zero disables throttling.
	Throttle time.Duration
	// Code overrides the code generator. Defaults to GenerateCode.
	Code func() (string, error)
}

// Repository is the TokenRepository over a TokenStore.
type Repository struct {
	store    TokenStore
	hasher   hash.Hash
	clock    clock.Clocker
	expire   time.Duration
	throttle time.Duration
	code     func() (string, error)
}

func NewRepository(cfg RepositoryConfig) *Repository {
	code := cfg.Code
	if code == nil {
		code = GenerateCode
	}

	return &Repository{
		store:    cfg.Store,
		hasher:   cfg.Hasher,
		clock:    cfg.Clock,
		expire:   cfg.Expire,
		throttle: max(cfg.Throttle, 0),
		code:     code,
	}
}

// GenerateCode returns a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

func (r *Repository) Create(ctx context.Context, user entity.CanSendOtpToken, action, field string) (string, error) {
	token, err := r.code()
	if err != nil {
		return "", err
	}

	hashed, err := r.hasher.Hash(token)
	if err != nil {
		return "", err
	}

	err = r.store.Replace(ctx, entity.Record{
		Column:    user.ColumnForOtpToken(field),
		Action:    action,
		Token:     string(hashed),
		CreatedAt: r.clock.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (r *Repository) Exists(ctx context.Context, user entity.CanSendOtpToken, token, action, field string) (bool, error) {
	rec, err := r.store.Find(ctx, user.ColumnForOtpToken(field), action)
	if err != nil || rec == nil {
		return false, err
	}

	if r.expired(rec.CreatedAt) {
		return false, nil
	}

	return r.hasher.Verify(rec.Token, token), nil
}

func (r *Repository) RecentlyCreatedToken(ctx context.Context, user entity.CanSendOtpToken, action, field string) (bool, error) {
	if r.throttle <= 0 {
		return false, nil
	}

	rec, err := r.store.Find(ctx, user.ColumnForOtpToken(field), action)
	if err != nil || rec == nil {
		return false, err
	}

	return r.clock.Now().Before(rec.CreatedAt.Add(r.throttle)), nil
}

func (r *Repository) Delete(ctx context.Context, user entity.CanSendOtpToken, action, field string) error {
	return r.store.Delete(ctx, user.ColumnForOtpToken(field), action)
}

func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	return r.store.DeleteCreatedBefore(ctx, r.clock.Now().UTC().Add(-r.expire))
}

func (r *Repository) expired(createdAt time.Time) bool {
	return r.clock.Now().After(createdAt.Add(r.expire))
}
