package mail

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

// ErrResendAPIKeyRequired is returned when the Resend API key is missing.
var ErrResendAPIKeyRequired = errors.New("mail: resend api key is required")

// ResendConfig configures the Resend driver.
type ResendConfig struct {
	APIKey string
	From   string
}

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	client      *resend.Client
	defaultFrom string
}

func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, ErrResendAPIKeyRequired
	}

	return &Resend{client: resend.NewClient(cfg.APIKey), defaultFrom: cfg.From}, nil
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	from, err := msg.sender(r.defaultFrom)
	if err != nil {
		return err
	}

	_, err = r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		Html:    msg.HTMLBody,
	})
	return err
}

func (r *Resend) Close() error {
	return nil
}
