package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/mail"
)

var htmlBody = template.Must(template.New("otp_token").Parse(`<!doctype html>
<html>
<body style="font-family: sans-serif">
  <p>Use the code below to {{.Action}} on {{.App}}.</p>
  <p style="font-size: 24px; letter-spacing: 4px"><strong>{{.Token}}</strong></p>
  <p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</body>
</html>`))

type Mail struct {
	client  mail.Mail
	ins     instrument.Instrumentation
	clock   clock.Clocker
	appName string
}

func New(client mail.Mail, ins instrument.Instrumentation, clk clock.Clocker, appName string) *Mail {
	return &Mail{client: client, ins: ins, clock: clk, appName: appName}
}

func (m *Mail) SendOtpToken(ctx context.Context, msg usecase.OtpTokenMail) error {
	ctx, span := m.ins.Tracer("otptoken.outbound.email").Start(ctx, "SendOtpToken")
	defer span.End()

	minutes := max(int(msg.ExpiresAt.Sub(m.clock.Now()).Round(time.Minute).Minutes()), 1)

	var body bytes.Buffer
	if err := htmlBody.Execute(&body, map[string]any{
		"App":     m.appName,
		"Action":  msg.Action,
		"Token":   msg.Token,
		"Minutes": minutes,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{msg.To},
		Subject:  fmt.Sprintf("%s verification code", m.appName),
		TextBody: fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.", m.appName, msg.Token, minutes),
		HTMLBody: body.String(),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
