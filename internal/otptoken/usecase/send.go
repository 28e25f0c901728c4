package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/idempotency"
)

type SendInput struct {
	Broker      string            `validate:"omitempty,identifier"`
	Action      string            `validate:"required,max=255"`
	Field       string            `validate:"required,identifier"`
	Credentials map[string]string `validate:"required,min=1"`
	// IdempotencyKey makes retries of the same request a no-op while the key lives.
	IdempotencyKey string `validate:"omitempty,max=128"`
	Locale         string
}

type SendOutput struct {
	Status entity.Status
	Broker string
}

// Send issues a token for the user matching in.Credentials and delivers it
// over mail or messaging depending on in.Field.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	in.Action = strings.TrimSpace(in.Action)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validate(in.Locale, in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if err := s.checkField(ctx, in.Field); err != nil {
		return nil, err
	}

	broker, err := s.broker(ctx, in.Broker)
	if err != nil {
		return nil, err
	}

	req := entity.Request{
		Credentials: in.Credentials,
		Action:      in.Action,
		Field:       in.Field,
	}

	if s.idemp == nil || in.IdempotencyKey == "" {
		status, err := broker.SendOtpToken(ctx, req, s.deliver(broker, in.Action, in.Field))
		if err != nil {
			return nil, s.flowError(ctx, "send", broker.Name(), err)
		}
		return &SendOutput{Status: status, Broker: broker.Name()}, nil
	}

	var status entity.Status
	err = s.idemp.Exec(ctx, "otptoken:send:"+broker.Name()+":"+in.IdempotencyKey, func(ctx context.Context) error {
		var err error
		status, err = broker.SendOtpToken(ctx, req, s.deliver(broker, in.Action, in.Field))
		return err
	})
	if errors.Is(err, idempotency.ErrInProgress) || errors.Is(err, idempotency.ErrCompleted) {
		slog.WarnContext(ctx, "duplicate otp token send request", "broker", broker.Name(), "error", err)
		return nil, goerror.NewBusiness("Request already processed", goerror.CodeConflict)
	}
	if err != nil {
		return nil, s.flowError(ctx, "send", broker.Name(), err)
	}

	return &SendOutput{Status: status, Broker: broker.Name()}, nil
}

func (s *Usecase) deliver(broker *Broker, action, field string) DeliverFunc {
	return func(ctx context.Context, user entity.CanSendOtpToken, token string) error {
		dest := user.ColumnForOtpToken(field)
		if dest == "" {
			return ErrNoDestination
		}

		expiresAt := s.clock.Now().Add(broker.Expire())

		if slices.Contains(s.mailFields(), field) {
			return s.repoMail.SendOtpToken(ctx, OtpTokenMail{
				To:        dest,
				Action:    action,
				Token:     token,
				ExpiresAt: expiresAt,
			})
		}

		return s.repoMessaging.PublishOtpTokenIssued(ctx, OtpTokenIssuedEvent{
			Broker:      broker.Name(),
			Action:      action,
			Field:       field,
			Destination: dest,
			Token:       token,
			ExpiresAt:   expiresAt,
		})
	}
}

func (s *Usecase) mailFields() []string {
	if fields := s.cfg.GetArray("modules.otptoken.mail_fields"); len(fields) > 0 {
		return fields
	}
	return []string{"email"}
}
