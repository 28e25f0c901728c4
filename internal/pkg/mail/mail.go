package mail

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoRecipients is returned when a message has no To address.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when neither the message nor the driver has a From address.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrUnknownDriver is returned by NewFromDriver for an unsupported driver name.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From overrides the driver's default sender.
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail sends messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

func (m Message) sender(defaultFrom string) (string, error) {
	if len(m.To) == 0 {
		return "", ErrNoRecipients
	}
	if m.From != "" {
		return m.From, nil
	}
	if defaultFrom == "" {
		return "", ErrNoSender
	}
	return defaultFrom, nil
}
