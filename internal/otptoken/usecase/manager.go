package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/config"
	"github.com/shandysiswandi/otptoken/internal/pkg/goroutine"
	"github.com/shandysiswandi/otptoken/internal/pkg/hash"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

const (
	StoreDatabase = "database"
	StoreRedis    = "redis"

	ProviderDatabase = "database"

	pruneConcurrency = 4
)

// BrokerConfig is the resolved configuration of otp.brokers.<name>.
type BrokerConfig struct {
	Name       string        `validate:"required"`
	Provider   string        `validate:"required"`
	Table      string        `validate:"required,identifier"`
	Expire     time.Duration `validate:"gt=0"`
	Throttle   time.Duration `validate:"gte=0"`
	Connection string
	Store      string `validate:"oneof=database redis"`
}

// ProviderConfig is the resolved configuration of otp.providers.<name>.
type ProviderConfig struct {
	Name       string `validate:"required"`
	Driver     string `validate:"oneof=database"`
	Table      string `validate:"required,identifier"`
	Connection string
}

// StoreFactory builds the token store of a broker.
type StoreFactory func(ctx context.Context, cfg BrokerConfig) (TokenStore, error)

// ProviderFactory builds a user provider from configuration.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (UserProvider, error)

// ManagerDependency holds what a Manager needs.
type ManagerDependency struct {
	Config          config.Config
	Validator       validator.Validator
	Hasher          hash.Hash
	Clock           clock.Clocker
	Instrument      instrument.Instrumentation
	StoreFactory    StoreFactory
	ProviderFactory ProviderFactory
}

// Manager builds brokers from configuration on first use and caches them.
// It is safe for concurrent use.
type Manager struct {
	cfg             config.Config
	validator       validator.Validator
	hasher          hash.Hash
	clock           clock.Clocker
	ins             instrument.Instrumentation
	storeFactory    StoreFactory
	providerFactory ProviderFactory

	mu            sync.Mutex
	brokers       map[string]*Broker
	providers     map[string]UserProvider
	defaultBroker string
}

func NewManager(dep ManagerDependency) *Manager {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Manager{
		cfg:             dep.Config,
		validator:       dep.Validator,
		hasher:          dep.Hasher,
		clock:           dep.Clock,
		ins:             ins,
		storeFactory:    dep.StoreFactory,
		providerFactory: dep.ProviderFactory,
		brokers:         make(map[string]*Broker),
		providers:       make(map[string]UserProvider),
	}
}

// Broker returns the broker called name, building it on the first call. An
// empty name selects the default broker.
func (m *Manager) Broker(ctx context.Context, name string) (*Broker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = m.defaultName()
	}

	if b, ok := m.brokers[name]; ok {
		return b, nil
	}

	b, err := m.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	m.brokers[name] = b
	return b, nil
}

// DefaultBroker returns the default broker name.
func (m *Manager) DefaultBroker() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.defaultName()
}

// SetDefaultBroker overrides otp.defaults.broker for this manager.
func (m *Manager) SetDefaultBroker(name string) {
	m.mu.Lock()
	m.defaultBroker = name
	m.mu.Unlock()
}

// RegisterProvider makes a host-supplied provider available under name. It
// takes precedence over otp.providers.<name>.
func (m *Manager) RegisterProvider(name string, provider UserProvider) {
	m.mu.Lock()
	m.providers[name] = provider
	m.mu.Unlock()
}

// Names lists the configured broker names, sorted.
func (m *Manager) Names() []string {
	return m.cfg.GetKeys("otp.brokers")
}

// PruneExpired deletes expired tokens of every configured broker and returns
// the total removed. Errors of individual brokers are joined.
func (m *Manager) PruneExpired(ctx context.Context) (int64, error) {
	total := atomic.NewInt64(0)
	g := goroutine.NewManager(pruneConcurrency)

	for _, name := range m.Names() {
		g.Go(ctx, func(ctx context.Context) error {
			b, err := m.Broker(ctx, name)
			if err != nil {
				return err
			}

			n, err := b.Repository().DeleteExpired(ctx)
			if err != nil {
				return fmt.Errorf("broker %q: %w", name, err)
			}

			if n > 0 {
				slog.InfoContext(ctx, "expired otp tokens deleted", "broker", name, "count", n)
			}
			total.Add(n)
			return nil
		})
	}

	err := g.Wait()
	return total.Load(), err
}

func (m *Manager) defaultName() string {
	if m.defaultBroker != "" {
		return m.defaultBroker
	}
	return m.cfg.GetString("otp.defaults.broker")
}

func (m *Manager) resolve(ctx context.Context, name string) (*Broker, error) {
	bc, err := m.brokerConfig(name)
	if err != nil {
		return nil, err
	}

	users, err := m.provider(ctx, bc.Provider)
	if err != nil {
		return nil, fmt.Errorf("broker %q: %w", name, err)
	}

	store, err := m.storeFactory(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("broker %q: token store: %w", name, err)
	}

	return NewBroker(BrokerDependency{
		Name: name,
		Repository: NewRepository(RepositoryConfig{
			Store:    store,
			Hasher:   m.hasher,
			Clock:    m.clock,
			Expire:   bc.Expire,
			Throttle: bc.Throttle,
		}),
		Users:  users,
		Expire: bc.Expire,
		Meter:  m.ins.Meter("otptoken.broker"),
	}), nil
}

func (m *Manager) brokerConfig(name string) (BrokerConfig, error) {
	key := "otp.brokers." + name
	if name == "" || !m.cfg.IsSet(key) {
		return BrokerConfig{}, brokerNotDefinedError{name: name}
	}

	bc := BrokerConfig{
		Name:       name,
		Provider:   m.cfg.GetString(key + ".provider"),
		Table:      m.cfg.GetString(key + ".table"),
		Expire:     m.cfg.GetMinute(key + ".expire_minutes"),
		Throttle:   m.cfg.GetSecond(key + ".throttle_seconds"),
		Connection: m.cfg.GetString(key + ".connection"),
		Store:      m.cfg.GetString(key + ".store"),
	}
	if bc.Store == "" {
		bc.Store = StoreDatabase
	}
	if bc.Connection == "" {
		bc.Connection = "default"
	}

	if err := m.validator.Validate(bc); err != nil {
		return BrokerConfig{}, fmt.Errorf("%w: broker %q: %w", ErrInvalidConfig, name, err)
	}

	return bc, nil
}

func (m *Manager) provider(ctx context.Context, name string) (UserProvider, error) {
	if p, ok := m.providers[name]; ok {
		return p, nil
	}

	key := "otp.providers." + name
	if !m.cfg.IsSet(key) {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotDefined, name)
	}

	pc := ProviderConfig{
		Name:       name,
		Driver:     m.cfg.GetString(key + ".driver"),
		Table:      m.cfg.GetString(key + ".table"),
		Connection: m.cfg.GetString(key + ".connection"),
	}
	if pc.Driver == "" {
		pc.Driver = ProviderDatabase
	}
	if pc.Connection == "" {
		pc.Connection = "default"
	}

	if err := m.validator.Validate(pc); err != nil {
		return nil, fmt.Errorf("%w: provider %q: %w", ErrInvalidConfig, name, err)
	}

	p, err := m.providerFactory(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", name, err)
	}

	m.providers[name] = p
	return p, nil
}
