package inbound

import (
	"context"

	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
	"github.com/shandysiswandi/otptoken/internal/pkg/router"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Grant(ctx context.Context) (*usecase.GrantOutput, error)
}

type translator interface {
	Message(locale, key string) string
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, tr translator, verifier jwt.JWT) {
	end := &HTTPEndpoint{uc: uc, tr: tr}

	r.POST("/api/v1/otp-tokens/send", end.Send)
	r.POST("/api/v1/otp-tokens/verify", end.Verify)
	r.GET("/api/v1/otp-tokens/grant", end.Grant, router.Authentication(verifier)) // need grant
}
