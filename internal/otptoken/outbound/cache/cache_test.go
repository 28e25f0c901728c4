package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}

	url, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTokenStoreRedis(t *testing.T) {
	ctx := context.Background()
	client := newRedis(t)
	store := NewTokenStore(client, instrument.NewNoop(), "otp", "otp_tokens", time.Hour)

	rec, err := store.Find(ctx, "a@test.dev", "login")
	if err != nil || rec != nil {
		t.Fatalf("Find() on empty store = %v, %v", rec, err)
	}

	created := time.Date(2026, 3, 1, 10, 0, 0, 42, time.UTC)
	if err := store.Replace(ctx, entity.Record{Column: "a@test.dev", Action: "login", Token: "h1", CreatedAt: created}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := store.Replace(ctx, entity.Record{Column: "a@test.dev", Action: "login", Token: "h2", CreatedAt: created.Add(time.Minute)}); err != nil {
		t.Fatalf("second Replace() error = %v", err)
	}

	rec, err = store.Find(ctx, "a@test.dev", "login")
	if err != nil || rec == nil {
		t.Fatalf("Find() = %v, %v", rec, err)
	}
	if rec.Token != "h2" || !rec.CreatedAt.Equal(created.Add(time.Minute)) {
		t.Errorf("Find() = %+v", rec)
	}

	ttl, err := client.PTTL(ctx, "otp:otp_tokens:login:a@test.dev").Result()
	if err != nil {
		t.Fatalf("PTTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("PTTL() = %v, want within (0, 1h]", ttl)
	}

	if n, err := store.DeleteCreatedBefore(ctx, created.Add(time.Hour)); err != nil || n != 0 {
		t.Errorf("DeleteCreatedBefore() = %d, %v", n, err)
	}

	if err := store.Delete(ctx, "a@test.dev", "login"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec, _ := store.Find(ctx, "a@test.dev", "login"); rec != nil {
		t.Errorf("Find() after Delete = %+v", rec)
	}
}

func TestTokenStoreRedisCorrupt(t *testing.T) {
	ctx := context.Background()
	client := newRedis(t)
	store := NewTokenStore(client, instrument.NewNoop(), "", "otp_tokens", time.Hour)

	if err := client.HSet(ctx, "otp_tokens:login:a@test.dev", "created_at", "yesterday").Err(); err != nil {
		t.Fatalf("HSet() error = %v", err)
	}

	if _, err := store.Find(ctx, "a@test.dev", "login"); err == nil {
		t.Error("Find() on a corrupt hash succeeded")
	}
}

func TestTokenStoreKey(t *testing.T) {
	withPrefix := NewTokenStore(nil, nil, "otp", "otp_tokens", time.Minute)
	if got := withPrefix.key("+628120001", "login"); got != "otp:otp_tokens:login:+628120001" {
		t.Errorf("key() = %q", got)
	}

	bare := NewTokenStore(nil, nil, "", "otp_tokens", time.Minute)
	if got := bare.key("a@test.dev", "reset"); got != "otp_tokens:reset:a@test.dev" {
		t.Errorf("key() = %q", got)
	}
}
