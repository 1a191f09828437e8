package service

import (
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/cache"
)

// AnalyticsFilter nil Start/End fall back to the trailing default window
type AnalyticsFilter struct {
	Start           *time.Time `json:"start,omitempty"`
	End             *time.Time `json:"end,omitempty"`
	Period          Period     `json:"period,omitempty"`
	ToolIDs         []uint     `json:"tool_ids,omitempty"`
	TagIDs          []uint     `json:"tag_ids,omitempty"`
	IncludeInactive bool       `json:"include_inactive,omitempty"`
}

type UsageInput struct {
	Action     string `json:"action"`
	Locale     string `json:"locale"`
	DurationMs int64  `json:"duration_ms"`
	Success    *bool  `json:"success"`
}

type ToolBreakdown struct {
	ToolID     uint    `json:"tool_id"`
	ToolSlug   string  `json:"tool_slug"`
	ToolName   string  `json:"tool_name"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SeriesPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Count       int       `json:"count"`
}

type AnalyticsSummary struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Period      Period          `json:"period"`
	TotalUsage  int             `json:"total_usage"`
	UniqueTools int             `json:"unique_tools"`
	Tools       []ToolBreakdown `json:"tools"`
	Series      []SeriesPoint   `json:"series"`
	Growth      GrowthRates     `json:"growth"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Type   ChartType `json:"type"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type PerformanceMetrics struct {
	model.MetricSnapshot
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
)

type SystemHealthDashboard struct {
	Status           HealthStatus       `json:"status"`
	Performance      PerformanceMetrics `json:"performance"`
	ActiveAlerts     []model.Alert      `json:"active_alerts"`
	AlertsBySeverity map[string]int     `json:"alerts_by_severity"`
	UnresolvedErrors int64              `json:"unresolved_errors"`
	RecentErrors     []model.ErrorLog   `json:"recent_errors"`
	Cache            cache.Stats        `json:"cache"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

type ErrorLogQuery struct {
	Start    *time.Time
	End      *time.Time
	Level    string
	Resolved *bool
	Limit    int
	Offset   int
}

type ErrorLogPage struct {
	Items  []model.ErrorLog `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
