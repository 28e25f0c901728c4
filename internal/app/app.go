package app

import (
	"context"
	"net/http"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"

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
	"github.com/shandysiswandi/otptoken/internal/pkg/uid"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	hasher    hash.Hash
	uuid      uid.StringID
	jwt       jwt.JWT
	lang      *lang.Translator

	// resources
	resolver  *database.Resolver
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Publisher
	scheduler gocron.Scheduler

	// modules
	brokers *usecase.Manager

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initScheduler()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

