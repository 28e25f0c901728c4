package inbound

import (
	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/router"
)

// HTTPEndpoint exposes the send and verify flows over HTTP.
type HTTPEndpoint struct {
	uc uc
	tr translator
}

// Send issues a token and delivers it to the user's field.
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	locale := r.Locale()
	resp, err := h.uc.Send(r.Context(), usecase.SendInput{
		Broker:         req.Broker,
		Action:         req.Action,
		Field:          req.Field,
		Credentials:    req.Credentials,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Locale:         locale,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Status.Success() {
		return nil, h.statusError(locale, resp.Status)
	}

	return SendResponse{
		Broker: resp.Broker,
		Status: resp.Status.String(),
		msg:    h.tr.Message(locale, resp.Status.String()),
	}, nil
}

// Verify checks a token and returns a grant for the verified destination.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	locale := r.Locale()
	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Broker:      req.Broker,
		Action:      req.Action,
		Field:       req.Field,
		Token:       req.Token,
		Credentials: req.Credentials,
		Locale:      locale,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Status.Success() {
		return nil, h.statusError(locale, resp.Status)
	}

	return VerifyResponse{
		Broker: resp.Broker,
		Status: resp.Status.String(),
		Grant:  resp.Grant,
		msg:    h.tr.Message(locale, resp.Status.String()),
	}, nil
}

// Grant returns the claims of the bearer grant.
func (h *HTTPEndpoint) Grant(r *router.Request) (any, error) {
	resp, err := h.uc.Grant(r.Context())
	if err != nil {
		return nil, err
	}

	return GrantResponse{
		Subject:   resp.Subject,
		Broker:    resp.Broker,
		Action:    resp.Action,
		Field:     resp.Field,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

func (h *HTTPEndpoint) statusError(locale string, status entity.Status) error {
	msg := h.tr.Message(locale, status.String())

	switch status {
	case entity.StatusInvalidUser:
		return goerror.NewBusiness(msg, goerror.CodeNotFound)
	case entity.StatusOtpThrottled:
		return goerror.NewBusiness(msg, goerror.CodeTooManyRequest)
	default:
		return goerror.NewBusiness(msg, goerror.CodeInvalidInput)
	}
}
