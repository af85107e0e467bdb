// Package uuid issues the time-ordered identifiers used to correlate log
// lines, requests and published events.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. It falls back to a random v4 when the
// time-ordered generator fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// OrDefault returns s when it is a valid UUID, otherwise a fresh one.
// Used for ids supplied by callers, such as an incoming request id header.
func OrDefault(s string) string {
	if s != "" && IsValid(s) {
		return s
	}
	return New()
}
