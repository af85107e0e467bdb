package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finbot/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPin is the PIN every fixture user is created with.
const TestPin = "1234"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NextTelegramID returns a Telegram id no other fixture has used.
func NextTelegramID() int64 {
	return 100000 + nextID()
}

// CreateTestUser creates a user with TestPin, a unique Telegram id and no session.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithPin(t, db, NextTelegramID(), TestPin)
}

// CreateTestUserWithPin creates a user with the given Telegram id and PIN.
func CreateTestUserWithPin(t *testing.T, db *gorm.DB, telegramID int64, pin string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}

	user := &models.User{
		TelegramID: telegramID,
		PinHash:    string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateLoggedInUser creates a user whose session started at loginAt.
func CreateLoggedInUser(t *testing.T, db *gorm.DB, loginAt time.Time) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	user.LastLoginAt = &loginAt
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to set last login: %v", err)
	}
	return user
}

// CreateTestCard creates an active credit card with a unique name.
func CreateTestCard(t *testing.T, db *gorm.DB, userID uint) *models.Card {
	t.Helper()
	return CreateTestCardWithName(t, db, userID, fmt.Sprintf("Test Card %d", nextID()))
}

// CreateTestCardWithName creates an active credit card with the given name.
func CreateTestCardWithName(t *testing.T, db *gorm.DB, userID uint, name string) *models.Card {
	t.Helper()

	card := &models.Card{
		UserID:     userID,
		Name:       name,
		LastFour:   "4242",
		ClosingDay: 10,
		DueDay:     17,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestCategory creates a custom (non-default) category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateDefaultCategory creates a category flagged as default.
func CreateDefaultCategory(t *testing.T, db *gorm.DB, userID uint, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:    userID,
		Name:      name,
		IsDefault: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create default category: %v", err)
	}
	return category
}
