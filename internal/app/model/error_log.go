package model

import "time"

type ErrorLevel string

const (
	ErrorLevelWarning  ErrorLevel = "warning"
	ErrorLevelError    ErrorLevel = "error"
	ErrorLevelCritical ErrorLevel = "critical"
)

// ErrorLog 애플리케이션 에러 기록 (resolve 만 가능, 삭제 없음)
type ErrorLog struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Stack      string     `gorm:"type:text" json:"stack,omitempty"`
	Context    string     `gorm:"type:text" json:"context,omitempty"` // JSON encoded map
	Level      ErrorLevel `gorm:"type:varchar(20);index" json:"level"`
	Resolved   bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (ErrorLog) TableName() string {
	return "error_logs"
}
