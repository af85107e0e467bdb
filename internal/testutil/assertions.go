package testutil

import (
	"testing"

	"gorm.io/gorm"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// AssertAppError checks that err carries the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error code %q, got nil", expectedCode)
	}
	code := apperrors.CodeOf(err)
	if code == "" {
		t.Fatalf("expected error code %q, got untyped error %T: %v", expectedCode, err, err)
	}
	if code != expectedCode {
		t.Errorf("expected error code %q, got %q (%v)", expectedCode, code, err)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAudited returns the latest audit entry for userID and action, failing
// the test when there is none.
func AssertAudited(t *testing.T, db *gorm.DB, userID uint, action string) models.AuditLog {
	t.Helper()

	var entry models.AuditLog
	err := db.Where("user_id = ? AND action = ?", userID, action).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		t.Fatalf("expected %s audit entry for user %d: %v", action, userID, err)
	}
	return entry
}

// AssertSoftDeleted checks that the row of model with id still exists but is
// marked deleted.
func AssertSoftDeleted(t *testing.T, db *gorm.DB, model any, id uint) {
	t.Helper()

	var deleted int64
	if err := db.Unscoped().Model(model).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Count(&deleted).Error; err != nil {
		t.Fatalf("failed to query %T %d: %v", model, id, err)
	}
	if deleted != 1 {
		t.Errorf("expected %T %d to be soft deleted", model, id)
	}
}
