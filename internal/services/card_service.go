package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
	"finbot/internal/validator"
)

// cardService handles card-related business logic.
type cardService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB, audit AuditServicer) CardServicer {
	return &cardService{db: db, audit: audit}
}

// CreateCard stores a credit card for the user. Active card names are unique
// per user regardless of case.
func (s *cardService) CreateCard(ctx context.Context, userID uint, in validator.CardInput) (*models.Card, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Card(in); err != nil {
		return nil, err
	}

	card := &models.Card{
		UserID:     userID,
		Name:       in.Name,
		LastFour:   in.LastFour,
		ClosingDay: in.ClosingDay,
		DueDay:     in.DueDay,
		IsDebit:    false,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, userID); err != nil {
			return err
		}

		exists, err := activeNameExists(tx, &models.Card{}, userID, in.Name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateCard
		}

		if err := tx.Create(card).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateCard
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:       userID,
		Action:       models.AuditActionCreateCard,
		ResourceType: "card",
		ResourceID:   card.ID,
		Changes:      map[string]any{"name": card.Name, "last_four": card.LastFour},
	})
	return card, nil
}

// ListCards returns the user's active cards ordered by name.
func (s *cardService) ListCards(ctx context.Context, userID uint) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cards, nil
}

// DeleteCard soft-deletes a card. Cards of other users are reported as not found.
func (s *cardService) DeleteCard(ctx context.Context, userID, cardID uint) error {
	var card models.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCardNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:       userID,
		Action:       models.AuditActionDeleteCard,
		ResourceType: "card",
		ResourceID:   cardID,
		Changes:      map[string]any{"name": card.Name},
	})
	return nil
}
