package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
)

type GrantOutput struct {
	Subject   string
	Broker    string
	Action    string
	Field     string
	ExpiresAt time.Time
}

// Grant returns the verification grant attached to ctx by the authentication middleware.
func (s *Usecase) Grant(ctx context.Context) (*GrantOutput, error) {
	_, span := s.startSpan(ctx, "Grant")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	out := &GrantOutput{
		Subject: clm.Subject,
		Broker:  clm.Broker,
		Action:  clm.Action,
		Field:   clm.Field,
	}
	if clm.ExpiresAt != nil {
		out.ExpiresAt = clm.ExpiresAt.Time
	}

	return out, nil
}
