package models

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#6B7280"

// Tag is a free-form label that can be attached to many transactions.
// UsageCount tracks how many live transactions reference the tag and is
// never negative.
type Tag struct {
	Base
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string `gorm:"not null;index" json:"name"`
	Color      string `gorm:"not null;default:'#6B7280'" json:"color"`
	UsageCount int    `gorm:"not null;default:0" json:"usage_count"`
}
