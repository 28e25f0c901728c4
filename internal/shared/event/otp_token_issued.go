package event

// OtpTokenIssuedDestination is the default topic for tokens delivered by a
// gateway other than mail, such as SMS.
const OtpTokenIssuedDestination string = "otp_token_issued"

type OtpTokenIssuedMessage struct {
	Broker      string `json:"broker"`
	Action      string `json:"action"`
	Field       string `json:"field"`
	Destination string `json:"destination"`
	Token       string `json:"token"`
	ExpiresAt   int64  `json:"expires_at"`
}
