// Package hash provides one-way hashing for short secrets such as OTP codes.
//
// Only the digest is ever persisted; verification compares user input
// against it. Bcrypt, Argon2id and HMAC-SHA256 implementations share the
// Hash interface and are selected by driver name.
package hash
