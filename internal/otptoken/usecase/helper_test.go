package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/hash"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	records map[string]entity.Record
	cutoff  time.Time
	err     error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]entity.Record)}
}

func (m *memStore) key(column, action string) string {
	return column + "\x00" + action
}

func (m *memStore) Find(_ context.Context, column, action string) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[m.key(column, action)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memStore) Replace(_ context.Context, rec entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.records[m.key(rec.Column, rec.Action)] = rec
	return nil
}

func (m *memStore) Delete(_ context.Context, column, action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	delete(m.records, m.key(column, action))
	return nil
}

func (m *memStore) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	m.cutoff = cutoff

	var n int64
	for k, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// userProviderFunc adapts a function to UserProvider.
type userProviderFunc func(ctx context.Context, credentials map[string]string) (any, error)

func (f userProviderFunc) RetrieveByCredentials(ctx context.Context, credentials map[string]string) (any, error) {
	return f(ctx, credentials)
}

// emailUsers finds a GenericUser by its "email" credential.
func emailUsers(emails ...string) userProviderFunc {
	return func(_ context.Context, credentials map[string]string) (any, error) {
		for _, e := range emails {
			if credentials["email"] == e {
				return &entity.GenericUser{Attributes: map[string]string{"email": e, "phone": "+6281200" + e[:1]}}, nil
			}
		}
		return nil, nil
	}
}

func fixedCode(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

func newTestRepository(store TokenStore, clk clock.Clocker, expire, throttle time.Duration) *Repository {
	return NewRepository(RepositoryConfig{
		Store:    store,
		Hasher:   hash.NewHMACSHA256("test-secret"),
		Clock:    clk,
		Expire:   expire,
		Throttle: throttle,
		Code:     fixedCode("123456"),
	})
}
