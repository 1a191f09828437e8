package model

import (
	"time"
)

// Tag represents a categorization label that can be attached to tools
// 도구에 연결할 수 있는 분류 태그
type Tag struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"type:varchar(20)" json:"color"`  // 표시용 색상 (예: "#3B82F6")
	IsSystem    bool      `gorm:"default:false" json:"is_system"` // 시스템 태그는 자동 정리 대상에서 제외
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// ToolTag represents the many-to-many relationship between tools and tags
// 도구와 태그의 다대다 관계, CreatedAt 은 태그가 할당된 시각
type ToolTag struct {
	ToolID    uint      `gorm:"primaryKey;index" json:"tool_id"`
	TagID     uint      `gorm:"primaryKey;index" json:"tag_id"`
	Tool      Tool      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tag,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ToolTag) TableName() string {
	return "tool_tags"
}
