package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"gorm.io/gorm"
)

type ToolInput struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IconURL      string `json:"icon_url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

// ToolUpdate nil fields are left untouched
type ToolUpdate struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	IconURL      *string `json:"icon_url"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

type ToolService interface {
	ListTools(ctx context.Context, filter repository.ToolFilter) ([]model.Tool, error)
	GetTool(ctx context.Context, id uint) (*model.Tool, error)
	CreateTool(ctx context.Context, input ToolInput) (*model.Tool, error)
	UpdateTool(ctx context.Context, id uint, update ToolUpdate) (*model.Tool, error)
}

type toolService struct {
	baseService
	toolRepo repository.ToolRepository
}

func NewToolService(toolRepo repository.ToolRepository, c *cache.Cache, cacheTTL time.Duration) ToolService {
	return &toolService{
		baseService: newBaseService(c, cacheTTL),
		toolRepo:    toolRepo,
	}
}

func (s *toolService) ListTools(ctx context.Context, filter repository.ToolFilter) ([]model.Tool, error) {
	tools, err := s.toolRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperrors.Classify(err, "list tools")
	}
	return tools, nil
}

func (s *toolService) GetTool(ctx context.Context, id uint) (*model.Tool, error) {
	tool, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError(apperrors.ToolNotFound, "tool not found", uintString(id))
		}
		return nil, apperrors.Classify(err, "find tool")
	}
	return tool, nil
}

func (s *toolService) CreateTool(ctx context.Context, input ToolInput) (*model.Tool, error) {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateRequired(map[string]interface{}{"slug": input.Slug, "name": input.Name}); err != nil {
		return nil, err
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, apperrors.Validation(apperrors.ValidationInvalidFormat,
			"slug may contain lowercase letters, digits and single hyphens", map[string]string{"slug": "invalid"})
	}

	tool := &model.Tool{
		Slug:         input.Slug,
		Name:         input.Name,
		Description:  input.Description,
		IconURL:      input.IconURL,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive == nil || *input.IsActive,
	}
	if err := s.toolRepo.Create(ctx, tool); err != nil {
		return nil, apperrors.Classify(err, "create tool")
	}

	s.invalidateCache(ctx, relationshipsCachePrefix, tagUsageCachePrefix)
	return tool, nil
}

// UpdateTool 활성 상태가 바뀌면 분석 캐시도 함께 무효화
func (s *toolService) UpdateTool(ctx context.Context, id uint, update ToolUpdate) (*model.Tool, error) {
	tool, err := s.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.MissingFields([]string{"name"})
		}
		tool.Name = name
	}
	if update.Description != nil {
		tool.Description = *update.Description
	}
	if update.IconURL != nil {
		tool.IconURL = *update.IconURL
	}
	if update.DisplayOrder != nil {
		tool.DisplayOrder = *update.DisplayOrder
	}
	activityChanged := update.IsActive != nil && *update.IsActive != tool.IsActive
	if update.IsActive != nil {
		tool.IsActive = *update.IsActive
	}

	if err := s.toolRepo.Update(ctx, tool); err != nil {
		return nil, apperrors.Classify(err, "update tool")
	}

	patterns := []string{relationshipsCachePrefix, tagUsageCachePrefix}
	if activityChanged {
		patterns = append(patterns, analyticsCachePrefix, chartsCachePrefix)
		logger.Info("Tool activity changed", map[string]interface{}{
			"tool_id":   tool.ID,
			"slug":      tool.Slug,
			"is_active": tool.IsActive,
		})
	}
	s.invalidateCache(ctx, patterns...)
	return tool, nil
}

func uintString(id uint) string {
	return joinIDs([]uint{id})
}
