package model

import "time"

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Rank orders severities so they can be compared
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func ParseSeverity(s string) (AlertSeverity, bool) {
	sev := AlertSeverity(s)
	return sev, sev.Rank() > 0
}

type AlertState string

const (
	AlertOpen         AlertState = "open"
	AlertAcknowledged AlertState = "acknowledged"
	AlertResolved     AlertState = "resolved"
)

// Alert is raised by the aggregation pass when a metric drifts from its baseline.
// Alerts are never deleted, only resolved.
type Alert struct {
	ID             string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	MetricName     string        `gorm:"type:varchar(100);not null;index" json:"metric_name"`
	Severity       AlertSeverity `gorm:"type:varchar(20);not null" json:"severity"`
	Baseline       float64       `json:"baseline"`
	Observed       float64       `json:"observed"`
	Message        string        `gorm:"type:text" json:"message"`
	Acknowledged   bool          `gorm:"default:false" json:"acknowledged"`
	AcknowledgedBy string        `gorm:"type:varchar(255)" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	Resolved       bool          `gorm:"default:false;index" json:"resolved"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// State derives the lifecycle position from the two flags
func (a *Alert) State() AlertState {
	switch {
	case a.Resolved:
		return AlertResolved
	case a.Acknowledged:
		return AlertAcknowledged
	default:
		return AlertOpen
	}
}
