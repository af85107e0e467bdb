package services

import (
	"context"
	"time"

	"finbot/internal/extraction"
	"finbot/internal/models"
	"finbot/internal/validator"
)

// UserServicer is the authentication gate: account provisioning, PIN login
// and session checks.
type UserServicer interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Exists(ctx context.Context, telegramID int64) (bool, error)
	CreateUser(ctx context.Context, telegramID int64, pin string) (*models.User, error)
	CheckSession(ctx context.Context, telegramID int64) (*models.User, error)
	AttemptLogin(ctx context.Context, telegramID int64, pin string) (*models.User, error)
}

// CardServicer defines the contract for card-related business logic.
type CardServicer interface {
	CreateCard(ctx context.Context, userID uint, in validator.CardInput) (*models.Card, error)
	ListCards(ctx context.Context, userID uint) ([]models.Card, error)
	DeleteCard(ctx context.Context, userID, cardID uint) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID uint, name string) (*models.Category, error)
	ListCategories(ctx context.Context, userID uint) ([]models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID uint) error
}

// AuditServicer records security-relevant actions. Entries carry the
// correlation id found in ctx so they can be matched to log lines.
type AuditServicer interface {
	Log(ctx context.Context, entry AuditEntry)
}

// AuditEntry is one audited action on a user's resource.
type AuditEntry struct {
	UserID       uint
	Action       string
	ResourceType string
	ResourceID   uint
	Changes      map[string]any
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Extractor turns a transcript into expenses.
type Extractor interface {
	Extract(ctx context.Context, transcript string, reference time.Time) (extraction.Result, error)
}

// VoiceResult is the outcome of processing one voice note.
type VoiceResult struct {
	Transcript string
	Result     extraction.Result
}

// ExpenseServicer runs the voice-to-expense pipeline.
type ExpenseServicer interface {
	ProcessVoice(ctx context.Context, user *models.User, audioPath string) (*VoiceResult, error)
}
