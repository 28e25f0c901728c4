package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
)

// Credential keys that describe the flow rather than the user.
var flowKeys = []string{"token", "field", "action"}

// UserProvider looks a user up by credentials.
type UserProvider interface {
	// RetrieveByCredentials returns nil, nil when no user matches.
	RetrieveByCredentials(ctx context.Context, credentials map[string]string) (any, error)
}

// DeliverFunc hands the plaintext token to the user.
type DeliverFunc func(ctx context.Context, user entity.CanSendOtpToken, token string) error

// ActionFunc runs once the token is verified.
type ActionFunc func(ctx context.Context, user entity.CanSendOtpToken) error

// BrokerDependency holds what a Broker needs.
type BrokerDependency struct {
	Name       string
	Repository TokenRepository
	Users      UserProvider
	// Expire is how long issued tokens stay valid. Informational only.
	Expire     time.Duration
	// Meter records flow results. Optional.
	Meter      metric.Meter
}

// Broker runs the send and verify flows for one configured broker.
type Broker struct {
	name    string
	repo    TokenRepository
	users   UserProvider
	expire  time.Duration
	results metric.Int64Counter
}

func NewBroker(dep BrokerDependency) *Broker {
	meter := dep.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter("otptoken.broker")
	}

	results, err := meter.Int64Counter("otptoken.broker.results", metric.WithDescription("Broker flow results by status"))
	if err != nil {
		slog.Error("failed to create broker result counter", "broker", dep.Name, "error", err)
	}

	return &Broker{name: dep.Name, repo: dep.Repository, users: dep.Users, expire: dep.Expire, results: results}
}

func (b *Broker) Name() string {
	return b.name
}

// Expire returns how long issued tokens stay valid.
func (b *Broker) Expire() time.Duration {
	return b.expire
}

// Repository returns the broker's token repository.
func (b *Broker) Repository() TokenRepository {
	return b.repo
}

// SendOtpToken resolves the user, checks the throttle window, then creates a
// token and hands it to deliver. A delivery error is returned as is and the
// new record stays in place. A user without a value for req.Field gets
// ErrNoDestination before any record is touched.
func (b *Broker) SendOtpToken(ctx context.Context, req entity.Request, deliver DeliverFunc) (entity.Status, error) {
	if deliver == nil {
		return "", ErrCallbackRequired
	}

	user, err := b.GetUser(ctx, req.Credentials)
	if err != nil {
		return "", err
	}
	if user == nil {
		return b.result(ctx, entity.StatusInvalidUser), nil
	}
	if user.ColumnForOtpToken(req.Field) == "" {
		return "", ErrNoDestination
	}

	recent, err := b.repo.RecentlyCreatedToken(ctx, user, req.Action, req.Field)
	if err != nil {
		return "", err
	}
	if recent {
		return b.result(ctx, entity.StatusOtpThrottled), nil
	}

	token, err := b.repo.Create(ctx, user, req.Action, req.Field)
	if err != nil {
		return "", err
	}

	if err := deliver(ctx, user, token); err != nil {
		return "", err
	}

	return b.result(ctx, entity.StatusOtpSent), nil
}

// PerformAction verifies req.Token and runs action. The token is deleted only
// after action succeeds.
func (b *Broker) PerformAction(ctx context.Context, req entity.Request, action ActionFunc) (entity.Status, error) {
	if action == nil {
		return "", ErrCallbackRequired
	}

	user, err := b.GetUser(ctx, req.Credentials)
	if err != nil {
		return "", err
	}
	if user == nil {
		return b.result(ctx, entity.StatusInvalidUser), nil
	}
	// Records are keyed by destination, so an empty one never matches.
	if user.ColumnForOtpToken(req.Field) == "" {
		return b.result(ctx, entity.StatusInvalidToken), nil
	}

	ok, err := b.repo.Exists(ctx, user, req.Token, req.Action, req.Field)
	if err != nil {
		return "", err
	}
	if !ok {
		return b.result(ctx, entity.StatusInvalidToken), nil
	}

	if err := action(ctx, user); err != nil {
		return "", err
	}

	if err := b.repo.Delete(ctx, user, req.Action, req.Field); err != nil {
		return "", err
	}

	return b.result(ctx, entity.StatusActionCompleted), nil
}

// GetUser resolves the user from credentials without the flow keys. It
// returns nil, nil when no user matches.
func (b *Broker) GetUser(ctx context.Context, credentials map[string]string) (entity.CanSendOtpToken, error) {
	found, err := b.users.RetrieveByCredentials(ctx, lo.OmitByKeys(credentials, flowKeys))
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, nil
	}

	user, ok := found.(entity.CanSendOtpToken)
	if !ok {
		slog.WarnContext(ctx, "user provider returned an unsupported user", "broker", b.name, "type", fmt.Sprintf("%T", found))
		return nil, fmt.Errorf("%w: got %T", ErrUserContract, found)
	}

	return user, nil
}

func (b *Broker) CreateToken(ctx context.Context, user entity.CanSendOtpToken, action, field string) (string, error) {
	return b.repo.Create(ctx, user, action, field)
}

func (b *Broker) DeleteToken(ctx context.Context, user entity.CanSendOtpToken, action, field string) error {
	return b.repo.Delete(ctx, user, action, field)
}

func (b *Broker) TokenExists(ctx context.Context, user entity.CanSendOtpToken, token, action, field string) (bool, error) {
	return b.repo.Exists(ctx, user, token, action, field)
}

func (b *Broker) result(ctx context.Context, status entity.Status) entity.Status {
	if b.results != nil {
		b.results.Add(ctx, 1, metric.WithAttributes(
			attribute.String("broker", b.name),
			attribute.String("status", status.String()),
		))
	}
	return status
}
