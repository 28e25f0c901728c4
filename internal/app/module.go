package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otptoken/internal/otptoken"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.otptoken.enabled") {
		return
	}

	dep := otptoken.Dependency{
		Resolver:    a.resolver,
		Scheduler:   a.scheduler,
		Router:      a.router,
		Messaging:   a.messaging,
		Mail:        a.mail,
		Config:      a.config,
		Instrument:  a.ins,
		Clock:       a.clock,
		Hasher:      a.hasher,
		Validator:   a.validator,
		JWT:         a.jwt,
		Lang:        a.lang,
		Idempotency: a.idemp,
	}
	if a.cacheConn != nil {
		dep.CacheConn = a.cacheConn
	}

	brokers, err := otptoken.New(a.ctx, dep)
	if err != nil {
		slog.Error("failed to init module otptoken", "error", err)
		os.Exit(1)
	}

	a.brokers = brokers
}
