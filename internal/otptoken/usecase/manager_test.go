package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/config"
	"github.com/shandysiswandi/otptoken/internal/pkg/hash"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

const managerYAML = `
otp:
  defaults:
    broker: users
  brokers:
    users:
      provider: users
      table: otp_tokens
      expire_minutes: 60
      throttle_seconds: 30
    admins:
      provider: admins
      table: admin_otp_tokens
      expire_minutes: 10
  providers:
    users:
      driver: database
      table: users
`

type managerFixture struct {
	manager *Manager
	cfg     *config.Viper
	clock   *clock.Fake

	mu        sync.Mutex
	stores    map[string]*memStore
	built     []BrokerConfig
	providers []ProviderConfig
}

func newManagerFixture(t *testing.T, yaml string) *managerFixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	f := &managerFixture{cfg: cfg, clock: clock.NewFake(testNow), stores: make(map[string]*memStore)}
	f.manager = NewManager(ManagerDependency{
		Config:    cfg,
		Validator: v,
		Hasher:    hash.NewHMACSHA256("test-secret"),
		Clock:     f.clock,
		StoreFactory: func(_ context.Context, bc BrokerConfig) (TokenStore, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			f.built = append(f.built, bc)
			store := newMemStore()
			f.stores[bc.Name] = store
			return store, nil
		},
		ProviderFactory: func(_ context.Context, pc ProviderConfig) (UserProvider, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			f.providers = append(f.providers, pc)
			return emailUsers("a@test.dev"), nil
		},
	})

	return f
}

func TestManagerBrokerIsCached(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t, managerYAML)

	first, err := f.manager.Broker(ctx, "users")
	if err != nil {
		t.Fatalf("Broker() error = %v", err)
	}
	second, err := f.manager.Broker(ctx, "users")
	if err != nil {
		t.Fatalf("Broker() error = %v", err)
	}
	if first != second {
		t.Error("Broker() returned a different instance on the second call")
	}

	viaDefault, err := f.manager.Broker(ctx, "")
	if err != nil {
		t.Fatalf("Broker(\"\") error = %v", err)
	}
	if viaDefault != first {
		t.Error("Broker(\"\") did not return the default broker")
	}

	if len(f.built) != 1 {
		t.Fatalf("store factory called %d times, want 1", len(f.built))
	}
	bc := f.built[0]
	if bc.Table != "otp_tokens" || bc.Expire != time.Hour || bc.Throttle != 30*time.Second {
		t.Errorf("BrokerConfig = %+v", bc)
	}
	if bc.Store != StoreDatabase || bc.Connection != "default" {
		t.Errorf("BrokerConfig defaults = %q/%q", bc.Store, bc.Connection)
	}
}

func TestManagerBrokerConcurrent(t *testing.T) {
	f := newManagerFixture(t, managerYAML)

	const n = 16
	got := make([]*Broker, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			b, err := f.manager.Broker(context.Background(), "users")
			if err != nil {
				t.Errorf("Broker() error = %v", err)
				return
			}
			got[i] = b
		})
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatal("concurrent Broker() calls returned different instances")
		}
	}
	if len(f.built) != 1 {
		t.Errorf("store factory called %d times, want 1", len(f.built))
	}
}

func TestManagerBrokerNotDefined(t *testing.T) {
	f := newManagerFixture(t, managerYAML)

	_, err := f.manager.Broker(context.Background(), "customers")
	if !errors.Is(err, ErrBrokerNotDefined) {
		t.Fatalf("Broker() error = %v, want ErrBrokerNotDefined", err)
	}
	if want := "otp token broker [customers] is not defined"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestManagerInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "missing table",
			yaml: "otp:\n  brokers:\n    users:\n      provider: users\n      expire_minutes: 5\n  providers:\n    users:\n      driver: database\n      table: users\n",
			want: ErrInvalidConfig,
		},
		{
			name: "bad table identifier",
			yaml: "otp:\n  brokers:\n    users:\n      provider: users\n      table: \"otp tokens; drop\"\n      expire_minutes: 5\n",
			want: ErrInvalidConfig,
		},
		{
			name: "missing expire",
			yaml: "otp:\n  brokers:\n    users:\n      provider: users\n      table: otp_tokens\n",
			want: ErrInvalidConfig,
		},
		{
			name: "unknown store",
			yaml: "otp:\n  brokers:\n    users:\n      provider: users\n      table: otp_tokens\n      expire_minutes: 5\n      store: memcached\n",
			want: ErrInvalidConfig,
		},
		{
			name: "unknown provider",
			yaml: "otp:\n  brokers:\n    users:\n      provider: ghosts\n      table: otp_tokens\n      expire_minutes: 5\n",
			want: ErrProviderNotDefined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t, tt.yaml)

			if _, err := f.manager.Broker(context.Background(), "users"); !errors.Is(err, tt.want) {
				t.Errorf("Broker() error = %v, want %v", err, tt.want)
			}
			if len(f.built) != 0 {
				t.Error("store built for an invalid broker")
			}
		})
	}
}

func TestManagerDefaultBroker(t *testing.T) {
	f := newManagerFixture(t, managerYAML)

	if got := f.manager.DefaultBroker(); got != "users" {
		t.Errorf("DefaultBroker() = %q, want users", got)
	}

	f.manager.SetDefaultBroker("admins")
	if got := f.manager.DefaultBroker(); got != "admins" {
		t.Errorf("DefaultBroker() after set = %q, want admins", got)
	}

	f.manager.RegisterProvider("admins", emailUsers("root@test.dev"))
	b, err := f.manager.Broker(context.Background(), "")
	if err != nil {
		t.Fatalf("Broker(\"\") error = %v", err)
	}
	if b.Name() != "admins" {
		t.Errorf("Broker(\"\").Name() = %q, want admins", b.Name())
	}
}

func TestManagerRegisteredProviderWins(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t, managerYAML)

	f.manager.RegisterProvider("users", emailUsers("host@test.dev"))

	b, err := f.manager.Broker(ctx, "users")
	if err != nil {
		t.Fatalf("Broker() error = %v", err)
	}
	if len(f.providers) != 0 {
		t.Error("provider factory called despite a registered provider")
	}

	user, err := b.GetUser(ctx, map[string]string{"email": "host@test.dev"})
	if err != nil || user == nil {
		t.Errorf("GetUser() = %v, %v; want the registered provider's user", user, err)
	}
}

func TestManagerNames(t *testing.T) {
	f := newManagerFixture(t, managerYAML)

	if got, want := f.manager.Names(), []string{"admins", "users"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestManagerPruneExpired(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t, managerYAML)
	f.manager.RegisterProvider("admins", emailUsers("root@test.dev"))

	users, err := f.manager.Broker(ctx, "users")
	if err != nil {
		t.Fatalf("Broker(users) error = %v", err)
	}
	admins, err := f.manager.Broker(ctx, "admins")
	if err != nil {
		t.Fatalf("Broker(admins) error = %v", err)
	}

	a := &entity.GenericUser{Attributes: map[string]string{"email": "a@test.dev"}}
	b := &entity.GenericUser{Attributes: map[string]string{"email": "b@test.dev"}}
	for _, u := range []entity.CanSendOtpToken{a, b} {
		if _, err := users.CreateToken(ctx, u, "login", "email"); err != nil {
			t.Fatalf("CreateToken() error = %v", err)
		}
		if _, err := admins.CreateToken(ctx, u, "login", "email"); err != nil {
			t.Fatalf("CreateToken() error = %v", err)
		}
	}

	// admins expire after 10 minutes, users after an hour.
	f.clock.Advance(30 * time.Minute)

	n, err := f.manager.PruneExpired(ctx)
	if err != nil {
		t.Fatalf("PruneExpired() error = %v", err)
	}
	if n != 2 {
		t.Errorf("PruneExpired() = %d, want 2", n)
	}
	if f.stores["users"].len() != 2 || f.stores["admins"].len() != 0 {
		t.Errorf("remaining users=%d admins=%d", f.stores["users"].len(), f.stores["admins"].len())
	}

	f.stores["users"].err = errors.New("disk full")
	if _, err := f.manager.PruneExpired(ctx); !errors.Is(err, f.stores["users"].err) {
		t.Errorf("PruneExpired() error = %v, want the store error", err)
	}
}
