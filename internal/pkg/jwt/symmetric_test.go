package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/uid"
)

func newTestJWT(t *testing.T, clk *clock.Fake) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "otptoken",
		Audiences: []string{"otptoken"},
		TTL:       5 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

func TestSymmetricRoundTrip(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s := newTestJWT(t, clk)

	tok, err := s.Generate(Grant{Subject: "+15550001", Broker: "users", Action: "login", Field: "phone"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "+15550001" || claims.Broker != "users" || claims.Action != "login" || claims.Field != "phone" {
		t.Errorf("Verify() claims = %+v", claims)
	}

	clk.Advance(6 * time.Minute)
	if _, err := s.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() after ttl error = %v, want ErrTokenExpired", err)
	}
}

func TestNewHS512ShortSecret(t *testing.T) {
	if _, err := NewHS512(Config{Secret: []byte("short")}); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("NewHS512() error = %v, want ErrSigningKeyTooShort", err)
	}
}
