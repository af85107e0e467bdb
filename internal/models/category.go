package models

import "gorm.io/gorm"

// Category represents a spending category owned by a user.
type Category struct {
	Base
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"size:50;not null" json:"name"`
	IsDefault   bool           `gorm:"not null;default:false" json:"is_default"`
	IsEssential bool           `gorm:"not null;default:false" json:"is_essential"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// DefaultCategory describes an entry of the seed set every account starts with.
type DefaultCategory struct {
	Name        string
	IsEssential bool
}

// DefaultCategories is the fixed seed set created when an account is provisioned.
var DefaultCategories = []DefaultCategory{
	{Name: "Food", IsEssential: true},
	{Name: "Transport", IsEssential: true},
	{Name: "Leisure"},
	{Name: "Housing", IsEssential: true},
	{Name: "Subscriptions"},
	{Name: "Health", IsEssential: true},
	{Name: "Other"},
}
