package otptoken

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/otptoken/inbound"
	"github.com/shandysiswandi/otptoken/internal/otptoken/outbound/cache"
	"github.com/shandysiswandi/otptoken/internal/otptoken/outbound/db"
	"github.com/shandysiswandi/otptoken/internal/otptoken/outbound/email"
	"github.com/shandysiswandi/otptoken/internal/otptoken/outbound/mq"
	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/config"
	"github.com/shandysiswandi/otptoken/internal/pkg/database"
	"github.com/shandysiswandi/otptoken/internal/pkg/hash"
	"github.com/shandysiswandi/otptoken/internal/pkg/idempotency"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
	"github.com/shandysiswandi/otptoken/internal/pkg/lang"
	"github.com/shandysiswandi/otptoken/internal/pkg/mail"
	"github.com/shandysiswandi/otptoken/internal/pkg/messaging"
	"github.com/shandysiswandi/otptoken/internal/pkg/router"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

// Migrations holds the otp_tokens schema, one directory per dialect.
var Migrations = db.Migrations

type Dependency struct {
	Resolver   *database.Resolver         `validate:"required"`
	Scheduler  gocron.Scheduler           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Hasher     hash.Hash                  `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	Lang       *lang.Translator           `validate:"required"`

	// CacheConn backs brokers with store "redis". Optional.
	CacheConn redis.UniversalClient
	// Idempotency deduplicates send requests carrying an Idempotency-Key. Optional.
	Idempotency idempotency.Idempotency
	// Providers are host-supplied user providers, registered before any
	// broker is built.
	Providers map[string]usecase.UserProvider
}

// New builds every configured broker, registers the HTTP endpoints and the
// prune job, and returns the broker manager for in-process callers.
func New(ctx context.Context, dep Dependency) (*usecase.Manager, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	manager := usecase.NewManager(usecase.ManagerDependency{
		Config:          dep.Config,
		Validator:       dep.Validator,
		Hasher:          dep.Hasher,
		Clock:           dep.Clock,
		Instrument:      dep.Instrument,
		StoreFactory:    storeFactory(dep),
		ProviderFactory: providerFactory(dep),
	})
	for name, provider := range dep.Providers {
		manager.RegisterProvider(name, provider)
	}

	// Fail at startup on a broken broker instead of on the first request.
	for _, name := range manager.Names() {
		if _, err := manager.Broker(ctx, name); err != nil {
			return nil, err
		}
	}

	if err := dep.Lang.Load(entity.StatusMessages); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Brokers:       manager,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument, dep.Config.GetString("modules.otptoken.delivery_topic")),
		RepoMail:      email.New(dep.Mail, dep.Instrument, dep.Clock, dep.Config.GetString("app.name")),
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Lang, dep.JWT)

	interval := dep.Config.GetSecond("modules.otptoken.prune_interval_seconds")
	if err := inbound.RegisterCronJob(ctx, dep.Scheduler, uc, interval); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "otptoken module ready", "brokers", manager.Names(), "default", manager.DefaultBroker())

	return manager, nil
}

func storeFactory(dep Dependency) usecase.StoreFactory {
	return func(ctx context.Context, cfg usecase.BrokerConfig) (usecase.TokenStore, error) {
		if cfg.Store == usecase.StoreRedis {
			if dep.CacheConn == nil {
				return nil, fmt.Errorf("%w: broker %q uses store redis but redis is not configured", usecase.ErrInvalidConfig, cfg.Name)
			}
			return cache.NewTokenStore(dep.CacheConn, dep.Instrument, dep.Config.GetString("redis.prefix"), cfg.Table, cfg.Expire), nil
		}

		conn, err := dep.Resolver.Connection(ctx, cfg.Connection)
		if err != nil {
			return nil, err
		}
		return db.NewDB(conn, dep.Instrument).TokenStore(cfg.Table)
	}
}

func providerFactory(dep Dependency) usecase.ProviderFactory {
	return func(ctx context.Context, cfg usecase.ProviderConfig) (usecase.UserProvider, error) {
		conn, err := dep.Resolver.Connection(ctx, cfg.Connection)
		if err != nil {
			return nil, err
		}
		return db.NewDB(conn, dep.Instrument).UserProvider(cfg.Table)
	}
}
