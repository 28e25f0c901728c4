package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
)

type VerifyInput struct {
	Broker      string            `validate:"omitempty,identifier"`
	Action      string            `validate:"required,max=255"`
	Field       string            `validate:"required,identifier"`
	Token       string            `validate:"required,otpcode"`
	Credentials map[string]string `validate:"required,min=1"`
	Locale      string
}

type VerifyOutput struct {
	Status entity.Status
	Broker string
	// Grant is a signed JWT, set only when Status is entity.StatusActionCompleted.
	Grant string
}

// Verify checks in.Token and, when it matches, signs a grant for the
// verified destination. The token is consumed only once the grant is signed.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Action = strings.TrimSpace(in.Action)
	in.Token = strings.TrimSpace(in.Token)

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

	var grant string
	status, err := broker.PerformAction(ctx, entity.Request{
		Credentials: in.Credentials,
		Action:      in.Action,
		Field:       in.Field,
		Token:       in.Token,
	}, func(ctx context.Context, user entity.CanSendOtpToken) error {
		signed, err := s.jwt.Generate(jwt.Grant{
			Subject: user.ColumnForOtpToken(in.Field),
			Broker:  broker.Name(),
			Action:  in.Action,
			Field:   in.Field,
		})
		if err != nil {
			return err
		}

		grant = signed
		return nil
	})
	if err != nil {
		return nil, s.flowError(ctx, "verify", broker.Name(), err)
	}

	return &VerifyOutput{Status: status, Broker: broker.Name(), Grant: grant}, nil
}
