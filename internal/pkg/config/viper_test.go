package config

import (
	"errors"
	"slices"
	"testing"
	"time"
)

const testYAML = `
otp:
  defaults:
    broker: users
  brokers:
    users:
      table: otp_tokens
      expire_minutes: 60
      throttle_seconds: 30
    admins:
      table: admin_otp_tokens
app:
  cors: "http://a.test, http://b.test,,"
  hosts:
    - one
    - two
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	if got := cfg.GetString("otp.defaults.broker"); got != "users" {
		t.Errorf("GetString() = %q, want users", got)
	}
	if got := cfg.GetMinute("otp.brokers.users.expire_minutes"); got != time.Hour {
		t.Errorf("GetMinute() = %v, want 1h", got)
	}
	if got := cfg.GetSecond("otp.brokers.users.throttle_seconds"); got != 30*time.Second {
		t.Errorf("GetSecond() = %v, want 30s", got)
	}
	if got := cfg.GetSecond("otp.brokers.admins.throttle_seconds"); got != 0 {
		t.Errorf("GetSecond() on missing key = %v, want 0", got)
	}

	if !cfg.IsSet("otp.brokers.users") {
		t.Error("IsSet(otp.brokers.users) = false, want true")
	}
	if cfg.IsSet("otp.brokers.nobody") {
		t.Error("IsSet(otp.brokers.nobody) = true, want false")
	}

	if got, want := cfg.GetKeys("otp.brokers"), []string{"admins", "users"}; !slices.Equal(got, want) {
		t.Errorf("GetKeys() = %v, want %v", got, want)
	}

	if got, want := cfg.GetArray("app.cors"), []string{"http://a.test", "http://b.test"}; !slices.Equal(got, want) {
		t.Errorf("GetArray(csv) = %v, want %v", got, want)
	}
	if got, want := cfg.GetArray("app.hosts"), []string{"one", "two"}; !slices.Equal(got, want) {
		t.Errorf("GetArray(list) = %v, want %v", got, want)
	}
	if got := cfg.GetArray("app.missing"); len(got) != 0 {
		t.Errorf("GetArray(missing) = %v, want empty", got)
	}

	cfg.Set("otp.defaults.broker", "admins")
	if got := cfg.GetString("otp.defaults.broker"); got != "admins" {
		t.Errorf("GetString() after Set = %q, want admins", got)
	}
}

func TestViperFromBytesRequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); !errors.Is(err, ErrConfigTypeRequired) {
		t.Fatalf("NewViperFromBytes() error = %v, want ErrConfigTypeRequired", err)
	}
}
