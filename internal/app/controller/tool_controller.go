package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

type ToolController struct {
	toolService      service.ToolService
	analyticsService service.AnalyticsService
}

func NewToolController(toolService service.ToolService, analyticsService service.AnalyticsService) *ToolController {
	return &ToolController{
		toolService:      toolService,
		analyticsService: analyticsService,
	}
}

// ListTools 도구 목록 조회
// GET /api/v1/tools (활성 도구만) / GET /api/v1/admin/tools
// Query params:
//   - search: slug/이름 검색
//   - ids: "1,2,3"
//   - active_only: 관리자 목록에서만 의미 있음
func (ctrl *ToolController) ListTools(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"), "ids")
	if err != nil {
		respondError(c, "Invalid tool list request", err, nil)
		return
	}
	activeOnly, err := parseBoolQuery(c, "active_only")
	if err != nil {
		respondError(c, "Invalid tool list request", err, nil)
		return
	}

	filter := repository.ToolFilter{
		Search: strings.TrimSpace(c.Query("search")),
		IDs:    ids,
	}
	if activeOnly != nil {
		filter.ActiveOnly = *activeOnly
	}
	if _, isAdmin := middleware.GetUserID(c); !isAdmin {
		filter.ActiveOnly = true
	}

	tools, err := ctrl.toolService.ListTools(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list tools", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"count": len(tools),
	})
}

// CreateTool 도구 생성
// POST /api/v1/admin/tools
func (ctrl *ToolController) CreateTool(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ToolInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid tool request", bindError(err), nil)
		return
	}

	tool, err := ctrl.toolService.CreateTool(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to create tool", err, map[string]interface{}{"slug": req.Slug})
		return
	}

	log.Info("Tool created", map[string]interface{}{
		"tool_id": tool.ID,
		"slug":    tool.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"tool": tool})
}

// UpdateTool 도구 수정 (전달된 필드만 변경)
// PATCH /api/v1/admin/tools/:id
func (ctrl *ToolController) UpdateTool(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, "Invalid tool id", err, nil)
		return
	}

	var req service.ToolUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid tool update request", bindError(err), nil)
		return
	}

	tool, err := ctrl.toolService.UpdateTool(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "Failed to update tool", err, map[string]interface{}{"tool_id": id})
		return
	}

	log.Info("Tool updated", map[string]interface{}{
		"tool_id": tool.ID,
	})
	c.JSON(http.StatusOK, gin.H{"tool": tool})
}

// RecordUsage 도구 사용 이벤트 기록
// POST /api/v1/tools/:slug/usage
func (ctrl *ToolController) RecordUsage(c *gin.Context) {
	var req service.UsageInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, "Invalid usage request", bindError(err), nil)
			return
		}
	}

	slug := c.Param("slug")
	if err := ctrl.analyticsService.RecordUsage(c.Request.Context(), slug, req); err != nil {
		respondError(c, "Failed to record usage", err, map[string]interface{}{"slug": slug})
		return
	}

	c.Status(http.StatusAccepted)
}
