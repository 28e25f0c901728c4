package entity

import "time"

// Record is one pending token, unique per (Column, Action).
type Record struct {
	// Column is the destination value, such as a phone number or an email address.
	Column string
	Action string
	// Token is the hash of the code, never the code itself.
	Token     string
	CreatedAt time.Time
}

// Request carries the inputs of a send or verify flow.
type Request struct {
	// Credentials identify the user. Flow keys (token, field, action) are
	// ignored if present.
	Credentials map[string]string
	Action      string
	// Field names the user attribute holding the destination.
	Field string
	// Token is the submitted code, used by verification only.
	Token string
}
