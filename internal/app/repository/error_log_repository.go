package repository

import (
	"context"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"gorm.io/gorm"
)

type ErrorLogFilter struct {
	Start    time.Time
	End      time.Time
	Level    model.ErrorLevel
	Resolved *bool
	Limit    int
	Offset   int
}

type ErrorLogRepository interface {
	Create(ctx context.Context, entry *model.ErrorLog) error
	Save(ctx context.Context, entry *model.ErrorLog) error
	FindByID(ctx context.Context, id string) (*model.ErrorLog, error)
	FindAll(ctx context.Context, filter ErrorLogFilter) ([]model.ErrorLog, int64, error)
	CountUnresolved(ctx context.Context) (int64, error)
}

type errorLogRepository struct {
	db *gorm.DB
}

func NewErrorLogRepository(db *gorm.DB) ErrorLogRepository {
	return &errorLogRepository{db: db}
}

func (r *errorLogRepository) Create(ctx context.Context, entry *model.ErrorLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *errorLogRepository) Save(ctx context.Context, entry *model.ErrorLog) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *errorLogRepository) FindByID(ctx context.Context, id string) (*model.ErrorLog, error) {
	var entry model.ErrorLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindAll 필터 조건으로 에러 로그 조회, 전체 건수 함께 반환
func (r *errorLogRepository) FindAll(ctx context.Context, filter ErrorLogFilter) ([]model.ErrorLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ErrorLog{})
	if !filter.Start.IsZero() {
		query = query.Where("created_at >= ?", filter.Start.UTC())
	}
	if !filter.End.IsZero() {
		query = query.Where("created_at < ?", filter.End.UTC())
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []model.ErrorLog
	if err := query.Order("created_at DESC, id ASC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *errorLogRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ErrorLog{}).Where("resolved = ?", false).Count(&count).Error
	return count, err
}
