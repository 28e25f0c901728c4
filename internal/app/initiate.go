package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/option"

	"github.com/shandysiswandi/otptoken/internal/otptoken"
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
	"github.com/shandysiswandi/otptoken/internal/pkg/scheduler"
	"github.com/shandysiswandi/otptoken/internal/pkg/uid"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

func (a *App) initConfig() {
	if os.Getenv("LOCAL") == "true" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		SentryDSN:        a.config.GetString("instrument.sentry_dsn"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	hasher, err := hash.NewFromDriver(a.config.GetString("otp.hasher"), hash.FactoryOptions{
		BcryptCost:     a.config.GetInt("hash.bcrypt.cost"),
		BcryptPepper:   a.config.GetString("hash.bcrypt.pepper"),
		Argon2idPepper: a.config.GetString("hash.argon2id.pepper"),
		HMACSecret:     a.config.GetString("hash.hmac.secret"),
	})
	if err != nil {
		slog.Error("failed to init otp token hasher", "error", err)
		os.Exit(1)
	}
	a.hasher = hasher

	tr, err := lang.New()
	if err != nil {
		slog.Error("failed to init translator", "error", err)
		os.Exit(1)
	}
	a.lang = tr
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	conns := make(map[string]database.ConnectionConfig)
	for _, name := range a.config.GetKeys("database.connections") {
		key := "database.connections." + name
		cc := database.ConnectionConfig{
			Driver:          a.config.GetString(key + ".driver"),
			DSN:             a.config.GetString(key + ".dsn"),
			MaxOpenConns:    a.config.GetInt(key + ".max_open_conns"),
			MaxIdleConns:    a.config.GetInt(key + ".max_idle_conns"),
			ConnMaxLifetime: a.config.GetSecond(key + ".conn_max_lifetime_seconds"),
		}
		if err := a.validator.Validate(cc); err != nil {
			slog.Error("invalid database connection config", "connection", name, "error", err)
			os.Exit(1)
		}
		conns[name] = cc
	}

	a.resolver = database.NewResolver(database.Config{
		Connections:  conns,
		Migrate:      a.config.GetBool("database.migrate"),
		Migrations:   otptoken.Migrations,
		PingAttempts: a.config.GetUint64("database.ping_attempts"),
	})
}

func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Info("redis is not configured, redis token stores and idempotency are disabled")
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(pingCtx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "redis ping failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	prefix := ""
	if v := a.config.GetString("redis.prefix"); v != "" {
		prefix = v + ":idempotency:"
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb, idempotency.Options{
		Prefix:  prefix,
		LockTTL: a.config.GetSecond("idempotency.lock_ttl_seconds"),
		DoneTTL: a.config.GetSecond("idempotency.done_ttl_seconds"),
	})
}

func (a *App) initMail() {
	mailer, err := mail.NewFromDriver(mail.Config{
		Driver: a.config.GetString("mail.driver"),
		From:   a.config.GetString("mail.from"),
		SMTP: mail.SMTPConfig{
			Host:     a.config.GetString("mail.smtp.host"),
			Port:     a.config.GetInt("mail.smtp.port"),
			Username: a.config.GetString("mail.smtp.username"),
			Password: a.config.GetString("mail.smtp.password"),
		},
		Resend: mail.ResendConfig{
			APIKey: a.config.GetString("mail.resend.api_key"),
		},
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = mailer
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	pubsubOptions := []option.ClientOption{}
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v), option.WithoutAuthentication())
	}
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.credentials_file")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithCredentialsFile(v))
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			Config: func() *nsq.Config {
				cfg := nsq.NewConfig()
				cfg.DialTimeout = a.config.GetSecond("messaging.nsq.dial_timeout_seconds")
				cfg.ReadTimeout = a.config.GetSecond("messaging.nsq.read_timeout_seconds")
				cfg.WriteTimeout = a.config.GetSecond("messaging.nsq.write_timeout_seconds")
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initScheduler() {
	s, err := scheduler.New(a.ctx)
	if err != nil {
		slog.Error("failed to init scheduler", "error", err)
		os.Exit(1)
	}

	a.scheduler = s
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Scheduler",
			fn: func(context.Context) error {
				return a.scheduler.Shutdown()
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				return a.resolver.Close()
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
