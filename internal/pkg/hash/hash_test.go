package hash

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	tests := []struct {
		name string
		h    Hash
	}{
		{name: "bcrypt", h: NewBcrypt(bcrypt.MinCost, "pepper")},
		{name: "argon2id", h: NewArgon2id("pepper")},
		{name: "hmac", h: NewHMACSHA256("secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := tt.h.Hash("123456")
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if string(hashed) == "123456" {
				t.Fatal("Hash() returned the plaintext")
			}
			if !tt.h.Verify(string(hashed), "123456") {
				t.Error("Verify() with the right code = false, want true")
			}
			if tt.h.Verify(string(hashed), "654321") {
				t.Error("Verify() with a wrong code = true, want false")
			}
			if tt.h.Verify("", "123456") {
				t.Error("Verify() against an empty digest = true, want false")
			}
		})
	}
}

func TestNewFromDriver(t *testing.T) {
	for _, driver := range []string{"", DriverBcrypt, DriverArgon2id, DriverHMAC} {
		h, err := NewFromDriver(driver, FactoryOptions{BcryptCost: bcrypt.MinCost, HMACSecret: "s"})
		if err != nil || h == nil {
			t.Fatalf("NewFromDriver(%q) = %v, %v", driver, h, err)
		}
	}

	if _, err := NewFromDriver("md5", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("NewFromDriver(md5) error = %v, want ErrUnknownDriver", err)
	}
	if _, err := NewFromDriver(DriverHMAC, FactoryOptions{}); err == nil {
		t.Error("NewFromDriver(hmac) without secret: want error")
	}
}
