package mail

import (
	"context"
	"errors"
	"testing"
)

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "log default", cfg: Config{From: "no-reply@otp.test"}},
		{name: "smtp", cfg: Config{Driver: DriverSMTP, SMTP: SMTPConfig{Host: "localhost", Port: 1025}}},
		{name: "smtp missing host", cfg: Config{Driver: DriverSMTP}, wantErr: ErrSMTPHostPortRequired},
		{name: "resend", cfg: Config{Driver: DriverResend, Resend: ResendConfig{APIKey: "re_test"}}},
		{name: "resend missing key", cfg: Config{Driver: DriverResend}, wantErr: ErrResendAPIKeyRequired},
		{name: "unknown", cfg: Config{Driver: "carrier-pigeon"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFromDriver(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewFromDriver() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				if err := m.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestLogSend(t *testing.T) {
	ctx := context.Background()

	if err := NewLog("").Send(ctx, Message{}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("Send() without recipients error = %v", err)
	}
	if err := NewLog("").Send(ctx, Message{To: []string{"a@b.test"}}); !errors.Is(err, ErrNoSender) {
		t.Errorf("Send() without sender error = %v", err)
	}
	if err := NewLog("no-reply@otp.test").Send(ctx, Message{To: []string{"a@b.test"}, Subject: "hi"}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
}

func TestSMTPBuild(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: "no-reply@otp.test"})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}

	m := s.build("no-reply@otp.test", Message{To: []string{"a@b.test"}, Subject: "Your code", TextBody: "123456"})
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "a@b.test" {
		t.Errorf("To header = %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || got[0] != "Your code" {
		t.Errorf("Subject header = %v", got)
	}
}
