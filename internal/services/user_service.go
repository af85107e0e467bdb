package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finbot/internal/auth"
	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// userService handles PIN provisioning, login and session checks.
type userService struct {
	db     *gorm.DB
	hasher *auth.PinHasher
	policy auth.Policy
	audit  AuditServicer
	now    func() time.Time
}

// NewUserService creates a new UserServicer using the default lock/session policy.
func NewUserService(db *gorm.DB, hasher *auth.PinHasher, audit AuditServicer) UserServicer {
	return &userService{
		db:     db,
		hasher: hasher,
		policy: auth.DefaultPolicy(),
		audit:  audit,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetByTelegramID retrieves the account of a Telegram user.
func (s *userService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoAccount
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// Exists reports whether the Telegram user already has an account.
func (s *userService) Exists(ctx context.Context, telegramID int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("telegram_id = ?", telegramID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CreateUser provisions an account with the given PIN, seeds the default
// categories and opens a session, all in one transaction.
func (s *userService) CreateUser(ctx context.Context, telegramID int64, pin string) (*models.User, error) {
	if !auth.ValidPinFormat(pin) {
		return nil, apperrors.ErrInvalidPinFormat
	}

	// Hash outside the transaction; bcrypt at cost 12 is slow.
	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	user := &models.User{
		TelegramID:  telegramID,
		PinHash:     hash,
		LastLoginAt: &now,
	}

	var seeded int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("telegram_id = ?", telegramID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrAlreadyRegistered
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrAlreadyRegistered
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		n, err := seedDefaultCategories(tx, user.ID)
		if err != nil {
			return err
		}
		seeded = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:       user.ID,
		Action:       models.AuditActionRegister,
		ResourceType: "user",
		ResourceID:   user.ID,
		Changes:      map[string]any{"telegram_id": telegramID, "default_categories": seeded},
	})
	return user, nil
}

// CheckSession returns the user if they may use authenticated features now.
// It never mutates the account.
func (s *userService) CheckSession(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if s.policy.IsLocked(user, now) {
		return nil, lockedError(*user.LockedUntil, now)
	}
	if !s.policy.IsSessionValid(user, now) {
		return nil, apperrors.ErrSessionExpired
	}
	return user, nil
}

// AttemptLogin verifies pin for the Telegram user. The read, verification and
// counter update run in one transaction holding the user's row lock, so
// concurrent attempts cannot lose increments.
func (s *userService) AttemptLogin(ctx context.Context, telegramID int64, pin string) (*models.User, error) {
	var (
		user     models.User
		loginErr error
		action   string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("telegram_id = ?", telegramID).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNoAccount
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		now := s.now()
		if s.policy.IsLocked(&user, now) {
			return lockedError(*user.LockedUntil, now)
		}
		if !auth.ValidPinFormat(pin) {
			return apperrors.ErrInvalidPinFormat
		}
		s.policy.ReleaseExpiredLock(&user, now)

		ok, err := s.hasher.Verify(pin, user.PinHash)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if ok {
			s.policy.RegisterSuccess(&user, now)
			action = models.AuditActionLogin
		} else if s.policy.RegisterFailure(&user, now) {
			action = models.AuditActionLocked
			loginErr = lockedError(*user.LockedUntil, now)
		} else {
			action = models.AuditActionLoginFailed
			loginErr = invalidPinError(s.policy.RemainingAttempts(&user))
		}

		// The failure is committed even though the caller gets an error.
		return tx.Model(&user).
			Select("failed_attempts", "locked_until", "last_login_at").
			Updates(&user).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:       user.ID,
		Action:       action,
		ResourceType: "user",
		ResourceID:   user.ID,
		Changes:      map[string]any{"failed_attempts": user.FailedAttempts},
	})
	if loginErr != nil {
		return nil, loginErr
	}
	return &user, nil
}

func invalidPinError(remaining int) *apperrors.AppError {
	noun := "attempts"
	if remaining == 1 {
		noun = "attempt"
	}
	return apperrors.WithMessage(apperrors.ErrInvalidPin,
		fmt.Sprintf("Wrong PIN. You have %d %s left.", remaining, noun))
}

func lockedError(until, now time.Time) *apperrors.AppError {
	minutes := int(math.Ceil(until.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return apperrors.WithMessage(apperrors.ErrAccountLocked,
		fmt.Sprintf("Your account is locked. Try again in %d minute(s).", minutes))
}
