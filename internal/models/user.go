package models

import "time"

// User is the account of a chat actor. It is keyed by the Telegram user id
// and is never deleted.
type User struct {
	Base
	TelegramID     int64      `gorm:"uniqueIndex;not null" json:"telegram_id"`
	PinHash        string     `gorm:"not null" json:"-"`
	FailedAttempts int        `gorm:"not null;default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	Cards          []Card     `gorm:"foreignKey:UserID" json:"cards,omitempty"`
	Categories     []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
}
