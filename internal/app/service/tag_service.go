package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"gorm.io/gorm"
)

const tagsCachePrefix = "tags:"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type TagInput struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsSystem    bool   `json:"is_system"`
}

type TagService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error)
	CreateTag(ctx context.Context, input TagInput) (*model.Tag, error)
}

type tagService struct {
	baseService
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository, c *cache.Cache, cacheTTL time.Duration) TagService {
	return &tagService{
		baseService: newBaseService(c, cacheTTL),
		tagRepo:     tagRepo,
	}
}

// ListTags 모든 태그 목록 조회 (이름순, 캐시)
func (s *tagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return getCached(ctx, &s.baseService, tagsCachePrefix+"all", 0, func(ctx context.Context) ([]model.Tag, error) {
		tags, err := s.tagRepo.FindAll(ctx)
		if err != nil {
			return nil, apperrors.Classify(err, "list tags")
		}
		return tags, nil
	})
}

func (s *tagService) GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	tag, err := s.tagRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError(apperrors.TagNotFound, "tag not found", slug)
		}
		return nil, apperrors.Classify(err, "find tag")
	}
	return tag, nil
}

func (s *tagService) CreateTag(ctx context.Context, input TagInput) (*model.Tag, error) {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateRequired(map[string]interface{}{"slug": input.Slug, "name": input.Name}); err != nil {
		return nil, err
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, apperrors.Validation(apperrors.ValidationInvalidFormat,
			"slug may contain lowercase letters, digits and single hyphens", map[string]string{"slug": "invalid"})
	}

	tag := &model.Tag{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		IsSystem:    input.IsSystem,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, apperrors.Classify(err, "create tag")
	}

	// 새 태그는 사용 통계와 검증 결과(미사용 태그)에 바로 반영되어야 함
	s.invalidateCache(ctx, tagsCachePrefix, tagUsageCachePrefix, relationshipsCachePrefix)
	return tag, nil
}
