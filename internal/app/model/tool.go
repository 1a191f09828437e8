package model

import (
	"time"
)

// Tool is one catalog entry (Base64 codec, hash generator, ...)
type Tool struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Slug         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name"` // translation key, resolved by the front end
	Description  string    `gorm:"type:text" json:"description"`
	IconURL      string    `json:"icon_url"`
	DisplayOrder int       `gorm:"default:0;index" json:"display_order"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	ToolTags []ToolTag `gorm:"foreignKey:ToolID" json:"-"`
}

func (Tool) TableName() string {
	return "tools"
}
