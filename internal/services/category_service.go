package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, audit AuditServicer) CategoryServicer {
	return &categoryService{db: db, audit: audit}
}

// CreateCategory creates a custom category. Names longer than the column are truncated.
func (s *categoryService) CreateCategory(ctx context.Context, userID uint, name string) (*models.Category, error) {
	name = truncateRunes(strings.TrimSpace(name), models.CardNameMaxLength)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrNameRequired, "Send the category name, e.g. /add_category Pets")
	}

	category := &models.Category{UserID: userID, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, userID); err != nil {
			return err
		}

		exists, err := activeNameExists(tx, &models.Category{}, userID, name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateCategory
		}

		if err := tx.Create(category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateCategory
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
		Action:       models.AuditActionCreateCategory,
		ResourceType: "category",
		ResourceID:   category.ID,
		Changes:      map[string]any{"name": name},
	})
	return category, nil
}

// ListCategories returns the user's active categories, defaults first, then by name.
func (s *categoryService) ListCategories(ctx context.Context, userID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// DeleteCategory soft-deletes a custom category owned by the user.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID uint) error {
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.IsDefault {
			return apperrors.ErrCannotDeleteDefault
		}
		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:       userID,
		Action:       models.AuditActionDeleteCategory,
		ResourceType: "category",
		ResourceID:   categoryID,
		Changes:      map[string]any{"name": category.Name},
	})
	return nil
}

// seedDefaultCategories inserts the default category set for a user that has
// no default category yet and returns how many rows it created. Callers hold
// the owner's row lock.
func seedDefaultCategories(tx *gorm.DB, userID uint) (int, error) {
	var existing int64
	if err := tx.Model(&models.Category{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&existing).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return 0, nil
	}

	categories := make([]models.Category, 0, len(models.DefaultCategories))
	for _, def := range models.DefaultCategories {
		categories = append(categories, models.Category{
			UserID:      userID,
			Name:        def.Name,
			IsDefault:   true,
			IsEssential: def.IsEssential,
		})
	}
	if err := tx.Create(&categories).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(categories), nil
}

// lockOwner takes the user's row lock for the rest of the transaction,
// serializing writes that check-then-insert on that user's records.
func lockOwner(tx *gorm.DB, userID uint) error {
	var owner models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&owner, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoAccount
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// activeNameExists reports whether the user has a non-deleted row of model
// with the same name, compared case-insensitively.
func activeNameExists(tx *gorm.DB, model any, userID uint, name string) (bool, error) {
	var count int64
	if err := tx.Model(model).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
