// Package uid generates identifiers for correlation ids and token ids.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
