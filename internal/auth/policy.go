package auth

import (
	"time"

	"finbot/internal/models"
)

// Lock and session constants.
const (
	MaxFailedAttempts = 3
	LockDuration      = 15 * time.Minute
	SessionTTL        = 24 * time.Hour
)

// Policy decides whether an account is locked and whether its session is
// still valid. All checks compare instants, so stored time zones don't matter.
type Policy struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	SessionTTL        time.Duration
}

// DefaultPolicy returns the production policy: 3 attempts, 15 minute lock, 24 hour session.
func DefaultPolicy() Policy {
	return Policy{
		MaxFailedAttempts: MaxFailedAttempts,
		LockDuration:      LockDuration,
		SessionTTL:        SessionTTL,
	}
}

// IsLocked reports whether the user is locked out at now.
func (p Policy) IsLocked(user *models.User, now time.Time) bool {
	return user.LockedUntil != nil && now.Before(*user.LockedUntil)
}

// IsSessionValid reports whether the user's last login is recent enough.
func (p Policy) IsSessionValid(user *models.User, now time.Time) bool {
	if user.LastLoginAt == nil {
		return false
	}
	return now.Sub(*user.LastLoginAt) <= p.SessionTTL
}

// RemainingAttempts returns how many wrong PINs the user may still enter before locking.
func (p Policy) RemainingAttempts(user *models.User) int {
	remaining := p.MaxFailedAttempts - user.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RegisterFailure applies a wrong PIN to user and reports whether it locked the account.
// The counter never exceeds the threshold.
func (p Policy) RegisterFailure(user *models.User, now time.Time) bool {
	user.FailedAttempts++
	if user.FailedAttempts >= p.MaxFailedAttempts {
		user.FailedAttempts = p.MaxFailedAttempts
		until := now.Add(p.LockDuration)
		user.LockedUntil = &until
		return true
	}
	return false
}

// RegisterSuccess resets the failure state and opens a new session at now.
func (p Policy) RegisterSuccess(user *models.User, now time.Time) {
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
}

// ReleaseExpiredLock clears a lock whose time has passed so the next attempt
// starts a fresh window. It reports whether anything changed.
func (p Policy) ReleaseExpiredLock(user *models.User, now time.Time) bool {
	if user.LockedUntil == nil || now.Before(*user.LockedUntil) {
		return false
	}
	user.LockedUntil = nil
	user.FailedAttempts = 0
	return true
}
