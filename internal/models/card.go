package models

import "gorm.io/gorm"

// CardNameMaxLength bounds card and category names.
const CardNameMaxLength = 50

// Card is a payment card registered through the onboarding wizard.
type Card struct {
	Base
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Name       string         `gorm:"size:50;not null" json:"name"`
	LastFour   string         `gorm:"size:4;not null" json:"last_four"`
	ClosingDay int            `gorm:"not null" json:"closing_day"`
	DueDay     int            `gorm:"not null" json:"due_day"`
	IsDebit    bool           `gorm:"not null;default:false" json:"is_debit"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
