// Package mail sends email through a driver chosen at startup.
//
// Drivers:
//   - smtp: gopkg.in/gomail.v2 over an SMTP relay
//   - resend: the Resend HTTP API
//   - log: writes recipients and subject to slog and sends nothing, for local runs
package mail
