package repository

import (
	"context"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"gorm.io/gorm"
)

type AlertFilter struct {
	Resolved *bool
	Severity model.AlertSeverity
	Limit    int
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	Save(ctx context.Context, alert *model.Alert) error
	FindByID(ctx context.Context, id string) (*model.Alert, error)
	FindAll(ctx context.Context, filter AlertFilter) ([]model.Alert, error)
	HasUnresolved(ctx context.Context, metricName string) (bool, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		logger.Error("Failed to create alert", err, map[string]interface{}{
			"metric":   alert.MetricName,
			"severity": alert.Severity,
		})
		return err
	}
	return nil
}

func (r *alertRepository) Save(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	var alert model.Alert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindAll 알림 목록 조회 (최신순)
func (r *alertRepository) FindAll(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := r.db.WithContext(ctx).Model(&model.Alert{})
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var alerts []model.Alert
	if err := query.Order("created_at DESC, id ASC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) HasUnresolved(ctx context.Context, metricName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("metric_name = ? AND resolved = ?", metricName, false).
		Count(&count).Error
	return count > 0, err
}
