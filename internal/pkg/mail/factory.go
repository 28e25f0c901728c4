package mail

import "fmt"

const (
	DriverSMTP   = "smtp"
	DriverResend = "resend"
	DriverLog    = "log"
)

// Config selects and configures a driver.
type Config struct {
	Driver string
	From   string
	SMTP   SMTPConfig
	Resend ResendConfig
}

// NewFromDriver builds the driver named by cfg.Driver. An empty driver means log.
func NewFromDriver(cfg Config) (Mail, error) {
	switch cfg.Driver {
	case DriverSMTP:
		smtpCfg := cfg.SMTP
		if smtpCfg.From == "" {
			smtpCfg.From = cfg.From
		}
		return NewSMTP(smtpCfg)
	case DriverResend:
		resendCfg := cfg.Resend
		if resendCfg.From == "" {
			resendCfg.From = cfg.From
		}
		return NewResend(resendCfg)
	case DriverLog, "":
		return NewLog(cfg.From), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
