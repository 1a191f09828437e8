package repository

import (
	"context"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageQuery narrows usage events; Start inclusive, End exclusive, zero values are open
type UsageQuery struct {
	Start           time.Time
	End             time.Time
	ToolIDs         []uint
	TagIDs          []uint
	IncludeInactive bool
}

type ToolUsageCount struct {
	ToolID   uint   `json:"tool_id"`
	ToolSlug string `json:"tool_slug"`
	ToolName string `json:"tool_name"`
	Count    int64  `json:"count"`
}

type TagUsageCount struct {
	TagID   uint   `json:"tag_id"`
	TagSlug string `json:"tag_slug"`
	TagName string `json:"tag_name"`
	Count   int64  `json:"count"`
}

type UsageRepository interface {
	Create(ctx context.Context, stat *model.ToolUsageStat) error
	FindEvents(ctx context.Context, query UsageQuery) ([]model.UsageEvent, error)
	CountByTool(ctx context.Context, query UsageQuery) ([]ToolUsageCount, error)
	CountByTag(ctx context.Context, query UsageQuery) ([]TagUsageCount, error)
	FailureRate(ctx context.Context, start, end time.Time) (float64, int64, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Create(ctx context.Context, stat *model.ToolUsageStat) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(stat).Error; err != nil {
		logger.Error("Failed to record tool usage", err, map[string]interface{}{
			"tool_id": stat.ToolID,
			"action":  stat.Action,
		})
		return err
	}
	return nil
}

// scoped applies the shared window and tool/tag restrictions
func (r *usageRepository) scoped(ctx context.Context, q UsageQuery) *gorm.DB {
	query := r.db.WithContext(ctx).Table("tool_usage_stats")

	if !q.Start.IsZero() {
		query = query.Where("tool_usage_stats.created_at >= ?", q.Start.UTC())
	}
	if !q.End.IsZero() {
		query = query.Where("tool_usage_stats.created_at < ?", q.End.UTC())
	}
	if len(q.ToolIDs) > 0 {
		query = query.Where("tool_usage_stats.tool_id IN ?", q.ToolIDs)
	}
	if len(q.TagIDs) > 0 {
		query = query.Where("tool_usage_stats.tool_id IN (SELECT tool_id FROM tool_tags WHERE tag_id IN ?)", q.TagIDs)
	}
	if !q.IncludeInactive {
		query = query.Where("tool_usage_stats.tool_id IN (SELECT id FROM tools WHERE is_active = ?)", true)
	}
	return query
}

// FindEvents 기간 내 사용 이벤트 조회 (시간순)
func (r *usageRepository) FindEvents(ctx context.Context, q UsageQuery) ([]model.UsageEvent, error) {
	var events []model.UsageEvent
	err := r.scoped(ctx, q).
		Select("tool_usage_stats.tool_id AS tool_id, tool_usage_stats.created_at AS timestamp").
		Order("tool_usage_stats.created_at ASC").
		Scan(&events).Error
	if err != nil {
		logger.Error("Failed to load usage events", err, map[string]interface{}{
			"start": q.Start,
			"end":   q.End,
		})
		return nil, err
	}
	return events, nil
}

func (r *usageRepository) CountByTool(ctx context.Context, q UsageQuery) ([]ToolUsageCount, error) {
	var rows []ToolUsageCount
	err := r.scoped(ctx, q).
		Select("tools.id AS tool_id, tools.slug AS tool_slug, tools.name AS tool_name, COUNT(*) AS count").
		Joins("JOIN tools ON tools.id = tool_usage_stats.tool_id").
		Group("tools.id, tools.slug, tools.name").
		Order("count DESC, tools.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *usageRepository) CountByTag(ctx context.Context, q UsageQuery) ([]TagUsageCount, error) {
	var rows []TagUsageCount
	err := r.scoped(ctx, q).
		Select("tags.id AS tag_id, tags.slug AS tag_slug, tags.name AS tag_name, COUNT(*) AS count").
		Joins("JOIN tool_tags ON tool_tags.tool_id = tool_usage_stats.tool_id").
		Joins("JOIN tags ON tags.id = tool_tags.tag_id").
		Group("tags.id, tags.slug, tags.name").
		Order("count DESC, tags.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FailureRate returns the share of unsuccessful usage events in [start, end) and the sample size
func (r *usageRepository) FailureRate(ctx context.Context, start, end time.Time) (float64, int64, error) {
	var row struct {
		Total  int64
		Failed int64
	}
	err := r.db.WithContext(ctx).
		Table("tool_usage_stats").
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failed").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Total == 0 {
		return 0, 0, nil
	}
	return float64(row.Failed) / float64(row.Total), row.Total, nil
}
