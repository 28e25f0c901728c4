package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/messaging"
	"github.com/shandysiswandi/otptoken/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client      messaging.Publisher
	ins         instrument.Instrumentation
	destination string
}

// NewMessaging publishes to destination, or to event.OtpTokenIssuedDestination when empty.
func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = event.OtpTokenIssuedDestination
	}
	return &Messaging{client: client, ins: ins, destination: destination}
}

func (m *Messaging) PublishOtpTokenIssued(ctx context.Context, msg usecase.OtpTokenIssuedEvent) error {
	ctx, span := m.ins.Tracer("otptoken.outbound.mq").Start(ctx, "PublishOtpTokenIssued")
	defer span.End()

	body, err := json.Marshal(event.OtpTokenIssuedMessage{
		Broker:      msg.Broker,
		Action:      msg.Action,
		Field:       msg.Field,
		Destination: msg.Destination,
		Token:       msg.Token,
		ExpiresAt:   msg.ExpiresAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, m.destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Destination),
		Headers: map[string]string{keyOfCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
