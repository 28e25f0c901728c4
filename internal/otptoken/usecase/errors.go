package usecase

import "errors"

var (
	// ErrBrokerNotDefined is returned for a broker name missing from otp.brokers.
	ErrBrokerNotDefined = errors.New("otp token broker is not defined")
	// ErrProviderNotDefined is returned when a broker names an unknown user provider.
	ErrProviderNotDefined = errors.New("otp token user provider is not defined")
	// ErrInvalidConfig is returned when broker or provider configuration fails validation.
	ErrInvalidConfig = errors.New("otp token configuration is invalid")
	// ErrUserContract is returned when a provider yields a user without ColumnForOtpToken.
	ErrUserContract = errors.New("user must implement entity.CanSendOtpToken")
	// ErrCallbackRequired is returned when a flow is started without its callback.
	ErrCallbackRequired = errors.New("otp token callback is required")
	// ErrNoDestination is returned when the user has no value for the requested field.
	ErrNoDestination = errors.New("user has no destination for the requested field")
)

// brokerNotDefinedError names the broker while matching ErrBrokerNotDefined.
type brokerNotDefinedError struct {
	name string
}

func (e brokerNotDefinedError) Error() string {
	return "otp token broker [" + e.name + "] is not defined"
}

func (e brokerNotDefinedError) Unwrap() error {
	return ErrBrokerNotDefined
}
