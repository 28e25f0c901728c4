// Package jwt signs and verifies the short-lived grant issued after an OTP
// token is verified.
//
// Grants are HS512 tokens whose subject is the verified destination and whose
// private claims name the broker, action and field of the flow. Context
// helpers carry verified claims from the auth middleware to handlers.
package jwt
