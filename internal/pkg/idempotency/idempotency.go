// Package idempotency guards side effects behind a caller supplied key
// tracked in redis.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress   = errors.New("idempotency: operation already in progress")
	ErrCompleted    = errors.New("idempotency: operation already completed")
	ErrUnknownState = errors.New("idempotency: unknown state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn at most once per key while the key's state lives.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error) error
}

// Options tunes a Tracker.
type Options struct {
	// Prefix is prepended to every key. Defaults to "idempotency:".
	Prefix string
	// LockTTL bounds how long an in-progress marker survives a crash. Defaults to one minute.
	LockTTL time.Duration
	// DoneTTL is how long a completed key rejects replays. Defaults to ten minutes.
	DoneTTL time.Duration
}

// Tracker implements Idempotency with SET NX markers.
type Tracker struct {
	client  redis.UniversalClient
	prefix  string
	lockTTL time.Duration
	doneTTL time.Duration
}

func New(client redis.UniversalClient, opts Options) *Tracker {
	t := &Tracker{
		client:  client,
		prefix:  opts.Prefix,
		lockTTL: opts.LockTTL,
		doneTTL: opts.DoneTTL,
	}
	if t.prefix == "" {
		t.prefix = "idempotency:"
	}
	if t.lockTTL <= 0 {
		t.lockTTL = time.Minute
	}
	if t.doneTTL <= 0 {
		t.doneTTL = 10 * time.Minute
	}
	return t
}

// acquire marks key in progress, or reports the state another caller left.
func (t *Tracker) acquire(ctx context.Context, key string) (State, error) {
	ok, err := t.client.SetNX(ctx, key, StateInProgress.String(), t.lockTTL).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return StateNone, nil
	}

	current, err := t.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return t.acquire(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return State(current), nil
}

// Exec runs fn unless key is in progress or completed. A failed fn releases
// the key so the caller may retry.
func (t *Tracker) Exec(ctx context.Context, key string, fn func(context.Context) error) error {
	key = t.prefix + key

	state, err := t.acquire(ctx, key)
	if err != nil {
		return err
	}

	switch state {
	case StateNone:
	case StateInProgress:
		return ErrInProgress
	case StateCompleted:
		return ErrCompleted
	default:
		return ErrUnknownState
	}

	if err := fn(ctx); err != nil {
		if delErr := t.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}

	return t.client.Set(context.WithoutCancel(ctx), key, StateCompleted.String(), t.doneTTL).Err()
}
