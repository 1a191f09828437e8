package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

type RelationshipController struct {
	relationService service.RelationshipService
}

func NewRelationshipController(relationService service.RelationshipService) *RelationshipController {
	return &RelationshipController{relationService: relationService}
}

type BulkOperationRequest struct {
	Type      service.BulkOperationType `json:"type" binding:"required"`
	ToolIDs   []uint                    `json:"tool_ids" binding:"required"`
	TagIDs    []uint                    `json:"tag_ids" binding:"required"`
	Confirmed bool                      `json:"confirmed"`
}

type ValidateRelationshipsRequest struct {
	ToolIDs []uint `json:"tool_ids"`
	TagIDs  []uint `json:"tag_ids"`
}

// ListRelationships 도구-태그 연결 목록
// GET /api/v1/admin/relationships
// Query params:
//   - search: 도구/태그 이름 검색
//   - tool_ids, tag_ids: "1,2,3"
//   - active_only: true/false
//   - sort: tool_name | tag_name | display_order | assignment_count | last_modified
//   - order: asc | desc
func (ctrl *RelationshipController) ListRelationships(c *gin.Context) {
	filter := service.RelationshipFilter{Search: c.Query("search")}

	var err error
	if filter.ToolIDs, err = parseIDList(c.Query("tool_ids"), "tool_ids"); err != nil {
		respondError(c, "Invalid relationship query", err, nil)
		return
	}
	if filter.TagIDs, err = parseIDList(c.Query("tag_ids"), "tag_ids"); err != nil {
		respondError(c, "Invalid relationship query", err, nil)
		return
	}
	activeOnly, err := parseBoolQuery(c, "active_only")
	if err != nil {
		respondError(c, "Invalid relationship query", err, nil)
		return
	}
	filter.ActiveOnly = activeOnly != nil && *activeOnly

	sortBy := service.RelationshipSort{
		Field: service.RelationshipSortField(strings.ToLower(c.Query("sort"))),
		Order: service.SortOrder(strings.ToLower(c.Query("order"))),
	}

	relationships, err := ctrl.relationService.GetAllRelationships(c.Request.Context(), filter, sortBy)
	if err != nil {
		respondError(c, "Failed to list relationships", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"relationships": relationships,
		"count":         len(relationships),
	})
}

func (ctrl *RelationshipController) bindBulkOperation(c *gin.Context) (service.BulkTagOperation, bool) {
	var req BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid bulk operation request", bindError(err), nil)
		return service.BulkTagOperation{}, false
	}

	op, err := ctrl.relationService.BuildBulkOperation(
		service.BulkOperationType(strings.ToLower(string(req.Type))), req.ToolIDs, req.TagIDs)
	if err != nil {
		respondError(c, "Invalid bulk operation", err, map[string]interface{}{"type": req.Type})
		return service.BulkTagOperation{}, false
	}
	op.Confirmed = req.Confirmed
	return op, true
}

// PreviewBulkOperation 대량 태그 작업 미리보기 (DB 변경 없음)
// POST /api/v1/admin/relationships/bulk/preview
func (ctrl *RelationshipController) PreviewBulkOperation(c *gin.Context) {
	op, ok := ctrl.bindBulkOperation(c)
	if !ok {
		return
	}

	preview, err := ctrl.relationService.PreviewBulkOperation(c.Request.Context(), op)
	if err != nil {
		respondError(c, "Failed to preview bulk operation", err, map[string]interface{}{"type": op.Type})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": preview})
}

// ExecuteBulkOperation 대량 태그 작업 실행
// POST /api/v1/admin/relationships/bulk
func (ctrl *RelationshipController) ExecuteBulkOperation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	op, ok := ctrl.bindBulkOperation(c)
	if !ok {
		return
	}

	result, err := ctrl.relationService.ExecuteBulkOperation(c.Request.Context(), op)
	if err != nil {
		respondError(c, "Bulk operation failed", err, map[string]interface{}{
			"type":              op.Type,
			"estimated_changes": op.EstimatedChanges,
		})
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Info("Bulk operation executed", map[string]interface{}{
		"user_id":       userID,
		"type":          result.Type,
		"total_changes": result.TotalChanges,
	})
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// FindOrphans 고아 데이터 점검
// GET /api/v1/admin/relationships/orphans
func (ctrl *RelationshipController) FindOrphans(c *gin.Context) {
	check, err := ctrl.relationService.FindOrphanedEntities(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to check orphans", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphans": check})
}

// ResolveOrphans 고아 데이터 자동 정리
// POST /api/v1/admin/relationships/orphans/resolve
func (ctrl *RelationshipController) ResolveOrphans(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	resolution, err := ctrl.relationService.AutoResolveOrphans(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to resolve orphans", err, nil)
		return
	}

	log.Info("Orphans resolved", nil)
	c.JSON(http.StatusOK, gin.H{"resolution": resolution})
}

// ValidateRelationships 연결 무결성 검사 (id 목록이 비어 있으면 전체)
// POST /api/v1/admin/relationships/validate
func (ctrl *RelationshipController) ValidateRelationships(c *gin.Context) {
	var req ValidateRelationshipsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, "Invalid validation request", bindError(err), nil)
			return
		}
	}

	result, err := ctrl.relationService.ValidateRelationships(c.Request.Context(), req.ToolIDs, req.TagIDs)
	if err != nil {
		respondError(c, "Failed to validate relationships", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": result})
}
