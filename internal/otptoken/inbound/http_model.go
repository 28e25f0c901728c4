package inbound

import "time"

type SendRequest struct {
	Broker      string            `json:"broker"`
	Action      string            `json:"action"`
	Field       string            `json:"field"`
	Credentials map[string]string `json:"credentials"`
}

type SendResponse struct {
	Broker string `json:"broker"`
	Status string `json:"status"`

	msg string
}

func (r SendResponse) Message() string {
	return r.msg
}

type VerifyRequest struct {
	Broker      string            `json:"broker"`
	Action      string            `json:"action"`
	Field       string            `json:"field"`
	Token       string            `json:"token"`
	Credentials map[string]string `json:"credentials"`
}

type VerifyResponse struct {
	Broker string `json:"broker"`
	Status string `json:"status"`
	Grant  string `json:"grant"`

	msg string
}

func (r VerifyResponse) Message() string {
	return r.msg
}

type GrantResponse struct {
	Subject   string    `json:"subject"`
	Broker    string    `json:"broker"`
	Action    string    `json:"action"`
	Field     string    `json:"field"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (GrantResponse) Message() string {
	return "Grant is valid"
}
