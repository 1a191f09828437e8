package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

type TagController struct {
	tagService      service.TagService
	relationService service.RelationshipService
}

func NewTagController(tagService service.TagService, relationService service.RelationshipService) *TagController {
	return &TagController{tagService: tagService, relationService: relationService}
}

// ListTags 태그 목록 조회
// GET /api/v1/tags
func (ctrl *TagController) ListTags(c *gin.Context) {
	tags, err := ctrl.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list tags", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// GetTag 슬러그로 태그 조회
// GET /api/v1/tags/:slug
func (ctrl *TagController) GetTag(c *gin.Context) {
	slug := c.Param("slug")
	tag, err := ctrl.tagService.GetTagBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, "Failed to get tag", err, map[string]interface{}{"slug": slug})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// CreateTag 태그 생성
// POST /api/v1/admin/tags
func (ctrl *TagController) CreateTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.TagInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid tag request", bindError(err), nil)
		return
	}

	tag, err := ctrl.tagService.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to create tag", err, map[string]interface{}{"slug": req.Slug})
		return
	}

	log.Info("Tag created", map[string]interface{}{
		"tag_id": tag.ID,
		"slug":   tag.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// TagStatistics 태그 사용 통계
// GET /api/v1/admin/tags/statistics?tag_id=3
func (ctrl *TagController) TagStatistics(c *gin.Context) {
	var tagID *uint
	if raw := c.Query("tag_id"); raw != "" {
		ids, err := parseIDList(raw, "tag_id")
		if err != nil || len(ids) != 1 {
			if err == nil {
				err = bindErrorf("tag_id must be a single id")
			}
			respondError(c, "Invalid tag statistics request", err, nil)
			return
		}
		tagID = &ids[0]
	}

	stats, err := ctrl.relationService.GetTagUsageStatistics(c.Request.Context(), tagID)
	if err != nil {
		respondError(c, "Failed to get tag statistics", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}
