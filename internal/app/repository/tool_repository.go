package repository

import (
	"context"
	"strings"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"gorm.io/gorm"
)

type ToolFilter struct {
	Search     string
	IDs        []uint
	ActiveOnly bool
}

type ToolRepository interface {
	Create(ctx context.Context, tool *model.Tool) error
	Update(ctx context.Context, tool *model.Tool) error
	FindByID(ctx context.Context, id uint) (*model.Tool, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tool, error)
	FindAll(ctx context.Context, filter ToolFilter) ([]model.Tool, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Tool, error)
	Count(ctx context.Context) (total int64, active int64, err error)
}

type toolRepository struct {
	db *gorm.DB
}

func NewToolRepository(db *gorm.DB) ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, tool *model.Tool) error {
	logger.Debug("Creating tool in database", map[string]interface{}{
		"slug": tool.Slug,
	})

	if err := r.db.WithContext(ctx).Create(tool).Error; err != nil {
		logger.Error("Failed to create tool in database", err, map[string]interface{}{
			"slug": tool.Slug,
		})
		return err
	}
	return nil
}

func (r *toolRepository) Update(ctx context.Context, tool *model.Tool) error {
	if err := r.db.WithContext(ctx).Omit("ToolTags").Save(tool).Error; err != nil {
		logger.Error("Failed to update tool in database", err, map[string]interface{}{
			"tool_id": tool.ID,
		})
		return err
	}
	return nil
}

func (r *toolRepository) FindByID(ctx context.Context, id uint) (*model.Tool, error) {
	var tool model.Tool
	if err := r.db.WithContext(ctx).First(&tool, id).Error; err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *toolRepository) FindBySlug(ctx context.Context, slug string) (*model.Tool, error) {
	var tool model.Tool
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tool).Error; err != nil {
		return nil, err
	}
	return &tool, nil
}

// FindAll 필터 조건으로 도구 목록 조회 (display_order, id 순)
func (r *toolRepository) FindAll(ctx context.Context, filter ToolFilter) ([]model.Tool, error) {
	query := r.db.WithContext(ctx).Model(&model.Tool{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}

	var tools []model.Tool
	if err := query.Order("display_order ASC, id ASC").Find(&tools).Error; err != nil {
		logger.Error("Failed to list tools", err, map[string]interface{}{
			"search":      filter.Search,
			"active_only": filter.ActiveOnly,
		})
		return nil, err
	}
	return tools, nil
}

func (r *toolRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Tool, error) {
	if len(ids) == 0 {
		return []model.Tool{}, nil
	}
	var tools []model.Tool
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

func (r *toolRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, active int64
	if err := r.db.WithContext(ctx).Model(&model.Tool{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Tool{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
