package model

import "time"

// ToolUsageStat is one usage event reported by the front end
type ToolUsageStat struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ToolID     uint      `gorm:"not null;index" json:"tool_id"`
	Action     string    `gorm:"type:varchar(50)" json:"action"` // encode, decode, generate, convert ...
	Locale     string    `gorm:"type:varchar(10)" json:"locale"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `gorm:"not null" json:"success"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	Tool Tool `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (ToolUsageStat) TableName() string {
	return "tool_usage_stats"
}

// UsageEvent is the minimal projection the time-series aggregation works on
type UsageEvent struct {
	ToolID    uint      `json:"tool_id"`
	Timestamp time.Time `json:"timestamp"`
}
