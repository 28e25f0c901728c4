package entity

// Status is the outcome of a broker flow. Values are stable message keys.
type Status string

const (
	StatusOtpSent         Status = "otp_tokens.sent"
	StatusActionCompleted Status = "otp_tokens.completed"
	StatusInvalidUser     Status = "otp_tokens.user"
	StatusInvalidToken    Status = "otp_tokens.token"
	StatusOtpThrottled    Status = "otp_tokens.throttled"
)

func (s Status) String() string {
	return string(s)
}

// Success reports whether the flow reached its goal.
func (s Status) Success() bool {
	return s == StatusOtpSent || s == StatusActionCompleted
}

// StatusMessages is the translation catalogue for every Status, by locale.
var StatusMessages = map[string]map[string]string{
	"en": {
		StatusOtpSent.String():         "We have sent your otp token.",
		StatusActionCompleted.String(): "We have completed the verification process.",
		StatusInvalidUser.String():     "We can't find the user account.",
		StatusInvalidToken.String():    "This otp token is invalid.",
		StatusOtpThrottled.String():    "Please wait before retrying.",
	},
	"id": {
		StatusOtpSent.String():         "Kami telah mengirimkan token otp Anda.",
		StatusActionCompleted.String(): "Kami telah menyelesaikan proses verifikasi.",
		StatusInvalidUser.String():     "Kami tidak dapat menemukan akun pengguna.",
		StatusInvalidToken.String():    "Token otp ini tidak valid.",
		StatusOtpThrottled.String():    "Harap tunggu sebelum mencoba lagi.",
	},
}
