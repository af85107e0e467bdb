// Package auth holds the PIN credential store and the lock/session policy
// that the authentication gate applies to user accounts.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPinCost is the bcrypt work factor used in production.
const DefaultPinCost = 12

const (
	pinMinLength = 4
	pinMaxLength = 6
)

// PinHasher hashes and verifies PINs with bcrypt.
type PinHasher struct {
	cost int
}

// NewPinHasher returns a hasher using the given bcrypt cost. Costs outside
// bcrypt's accepted range fall back to DefaultPinCost.
func NewPinHasher(cost int) *PinHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPinCost
	}
	return &PinHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of pin.
func (h *PinHasher) Hash(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether pin matches hash. A mismatch is (false, nil); a
// malformed stored hash is returned as an error.
func (h *PinHasher) Verify(pin, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify pin: %w", err)
	}
}

// ValidPinFormat reports whether pin is 4 to 6 ASCII digits.
func ValidPinFormat(pin string) bool {
	if len(pin) < pinMinLength || len(pin) > pinMaxLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
