package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/config"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/idempotency"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
	"github.com/shandysiswandi/otptoken/internal/pkg/validator"
)

type OtpTokenIssuedEvent struct {
	Broker      string
	Action      string
	Field       string
	Destination string
	Token       string
	ExpiresAt   time.Time
}

type OtpTokenMail struct {
	To        string
	Action    string
	Token     string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishOtpTokenIssued(ctx context.Context, msg OtpTokenIssuedEvent) error
}

type repoMail interface {
	SendOtpToken(ctx context.Context, msg OtpTokenMail) error
}

type brokerManager interface {
	Broker(ctx context.Context, name string) (*Broker, error)
	PruneExpired(ctx context.Context) (int64, error)
}

type localeValidator interface {
	ValidateLocale(locale string, data any) error
}

type Usecase struct {
	brokers       brokerManager
	repoMessaging repoMessaging
	repoMail      repoMail
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	Brokers       brokerManager
	RepoMessaging repoMessaging
	RepoMail      repoMail
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		brokers:       dep.Brokers,
		repoMessaging: dep.RepoMessaging,
		repoMail:      dep.RepoMail,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otptoken.usecase").Start(ctx, name)
}

// validate translates field errors into locale when the validator supports it.
func (s *Usecase) validate(locale string, in any) error {
	if v, ok := s.validator.(localeValidator); ok && locale != "" {
		return v.ValidateLocale(locale, in)
	}
	return s.validator.Validate(in)
}

// checkField rejects fields outside modules.otptoken.fields so that no
// other user column can serve as a destination or a grant subject.
func (s *Usecase) checkField(ctx context.Context, field string) error {
	fields := s.cfg.GetArray("modules.otptoken.fields")
	if len(fields) == 0 {
		fields = []string{"email", "phone"}
	}
	if !slices.Contains(fields, field) {
		slog.WarnContext(ctx, "otp token field not allowed", "field", field)
		return goerror.NewInvalidInput(nil, "field", "Field is not allowed")
	}
	return nil
}

func (s *Usecase) broker(ctx context.Context, name string) (*Broker, error) {
	b, err := s.brokers.Broker(ctx, name)
	if errors.Is(err, ErrBrokerNotDefined) {
		slog.WarnContext(ctx, "otp token broker not defined", "broker", name)
		return nil, goerror.NewInvalidInput(nil, "broker", err.Error())
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve otp token broker", "broker", name, "error", err)
		return nil, goerror.NewServer(err)
	}

	return b, nil
}

// flowError maps a broker flow error to the goerror taxonomy.
func (s *Usecase) flowError(ctx context.Context, flow, broker string, err error) error {
	if _, ok := goerror.As(err); ok {
		return err
	}

	if errors.Is(err, ErrNoDestination) {
		slog.WarnContext(ctx, "otp token has no destination", "flow", flow, "broker", broker)
		return goerror.NewBusiness("User has no destination for this field", goerror.CodeInvalidInput)
	}

	slog.ErrorContext(ctx, "failed to run otp token flow", "flow", flow, "broker", broker, "error", err)
	return goerror.NewServer(err)
}
