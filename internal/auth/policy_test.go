package auth

import (
	"testing"
	"time"

	"finbot/internal/models"
)

func TestPolicy_IsLocked(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("never_locked", func(t *testing.T) {
		if p.IsLocked(&models.User{}, now) {
			t.Error("expected unlocked")
		}
	})

	t.Run("lock_in_future", func(t *testing.T) {
		until := now.Add(time.Minute)
		if !p.IsLocked(&models.User{LockedUntil: &until}, now) {
			t.Error("expected locked")
		}
	})

	t.Run("lock_expired_exactly_now", func(t *testing.T) {
		until := now
		if p.IsLocked(&models.User{LockedUntil: &until}, now) {
			t.Error("lock ending at now must be expired")
		}
	})

	t.Run("zone_agnostic", func(t *testing.T) {
		saoPaulo := time.FixedZone("BRT", -3*60*60)
		until := now.Add(5 * time.Minute).In(saoPaulo)
		if !p.IsLocked(&models.User{LockedUntil: &until}, now) {
			t.Error("expected lock to compare by instant")
		}
	})
}

func TestPolicy_IsSessionValid(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("never_logged_in", func(t *testing.T) {
		if p.IsSessionValid(&models.User{}, now) {
			t.Error("expected invalid session")
		}
	})

	t.Run("within_ttl", func(t *testing.T) {
		last := now.Add(-23 * time.Hour)
		if !p.IsSessionValid(&models.User{LastLoginAt: &last}, now) {
			t.Error("expected valid session")
		}
	})

	t.Run("exactly_ttl", func(t *testing.T) {
		last := now.Add(-24 * time.Hour)
		if !p.IsSessionValid(&models.User{LastLoginAt: &last}, now) {
			t.Error("session of exactly 24h must be valid")
		}
	})

	t.Run("past_ttl", func(t *testing.T) {
		last := now.Add(-24*time.Hour - time.Second)
		if p.IsSessionValid(&models.User{LastLoginAt: &last}, now) {
			t.Error("expected expired session")
		}
	})
}

func TestPolicy_RegisterFailure(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	user := &models.User{}

	for i := 1; i < MaxFailedAttempts; i++ {
		if p.RegisterFailure(user, now) {
			t.Fatalf("attempt %d must not lock", i)
		}
		if p.RemainingAttempts(user) != MaxFailedAttempts-i {
			t.Errorf("expected %d remaining, got %d", MaxFailedAttempts-i, p.RemainingAttempts(user))
		}
	}

	if !p.RegisterFailure(user, now) {
		t.Fatal("third failure must lock")
	}
	if user.FailedAttempts != MaxFailedAttempts {
		t.Errorf("expected counter at threshold, got %d", user.FailedAttempts)
	}
	if user.LockedUntil == nil || !user.LockedUntil.Equal(now.Add(15*time.Minute)) {
		t.Errorf("expected lock until now+15m, got %v", user.LockedUntil)
	}

	p.RegisterFailure(user, now)
	if user.FailedAttempts != MaxFailedAttempts {
		t.Errorf("counter must not exceed threshold, got %d", user.FailedAttempts)
	}
}

func TestPolicy_RegisterSuccess(t *testing.T) {
	p := DefaultPolicy()
	now := time.Now()
	until := now.Add(time.Minute)
	user := &models.User{FailedAttempts: 2, LockedUntil: &until}

	p.RegisterSuccess(user, now)

	if user.FailedAttempts != 0 || user.LockedUntil != nil {
		t.Errorf("expected reset state, got attempts=%d locked=%v", user.FailedAttempts, user.LockedUntil)
	}
	if user.LastLoginAt == nil || !user.LastLoginAt.Equal(now) {
		t.Error("expected last login at now")
	}
}

func TestPolicy_ReleaseExpiredLock(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("active_lock_kept", func(t *testing.T) {
		until := now.Add(time.Minute)
		user := &models.User{FailedAttempts: 3, LockedUntil: &until}
		if p.ReleaseExpiredLock(user, now) {
			t.Error("active lock must not be released")
		}
	})

	t.Run("expired_lock_released", func(t *testing.T) {
		until := now.Add(-time.Second)
		user := &models.User{FailedAttempts: 3, LockedUntil: &until}
		if !p.ReleaseExpiredLock(user, now) {
			t.Fatal("expected release")
		}
		if user.FailedAttempts != 0 || user.LockedUntil != nil {
			t.Error("expected fresh window after release")
		}
	})
}
