// Package clock provides a tiny time abstraction.
//
// Code that computes expiry or throttle windows depends on Clocker instead
// of calling time.Now directly, so tests can pin and advance time with Fake.
package clock
