// Package config exposes typed read access to the application configuration.
//
// Business code depends on the Config interface; the viper-backed
// implementation in this package loads YAML (or any viper format) from disk
// and reloads it on change.
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them into durations.
//
// Keys are expected to carry their unit in the name (for example
// "expire_minutes"), so the conversion happens here and nowhere else.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// IsSet reports whether key (or any nested key below it) has a value.
	IsSet(key string) bool

	// GetKeys returns the sorted child keys of the map stored at key.
	GetKeys(key string) []string

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 encoded value.
	GetBinary(key string) []byte

	// GetArray splits a "<element1>,<element2>,..." value. A YAML list is accepted too.
	GetArray(key string) []string
}
