package hash

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverBcrypt selects bcrypt.
	DriverBcrypt = "bcrypt"
	// DriverArgon2id selects Argon2id.
	DriverArgon2id = "argon2id"
	// DriverHMAC selects HMAC-SHA256.
	DriverHMAC = "hmac"
)

// ErrUnknownDriver indicates an unsupported hash driver.
var ErrUnknownDriver = errors.New("hash: unknown driver")

// Hash turns a plaintext secret into a storable digest and checks plaintext against it.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

// FactoryOptions groups the settings of every supported driver.
type FactoryOptions struct {
	BcryptCost     int
	BcryptPepper   string
	Argon2idPepper string
	HMACSecret     string
}

// NewFromDriver builds the Hash implementation named by driver. An empty driver selects bcrypt.
func NewFromDriver(driver string, opts FactoryOptions) (Hash, error) {
	switch strings.TrimSpace(driver) {
	case DriverBcrypt, "":
		return NewBcrypt(opts.BcryptCost, opts.BcryptPepper), nil
	case DriverArgon2id:
		return NewArgon2id(opts.Argon2idPepper), nil
	case DriverHMAC:
		if opts.HMACSecret == "" {
			return nil, fmt.Errorf("hash: hmac secret is required")
		}
		return NewHMACSHA256(opts.HMACSecret), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
