package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/middleware"
	"github.com/ikkim/toolchest-backend/internal/storage"
)

// IconPresigner issues direct-to-bucket upload URLs (S3)
type IconPresigner interface {
	PresignIconUpload(ctx context.Context, toolSlug, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	storage     IconPresigner
	toolService service.ToolService
}

func NewUploadController(storage IconPresigner, toolService service.ToolService) *UploadController {
	return &UploadController{
		storage:     storage,
		toolService: toolService,
	}
}

type PresignIconRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

// PresignToolIcon 도구 아이콘 업로드 URL 발급
// POST /api/v1/admin/tools/:id/icon/presigned-url
func (ctrl *UploadController) PresignToolIcon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, "Invalid tool id", err, nil)
		return
	}

	var req PresignIconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid presigned URL request", bindError(err), nil)
		return
	}

	if err := storage.ValidateContentType(req.ContentType, storage.AllowedIconTypes); err != nil {
		log.Warn("Invalid icon content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "PNG, SVG, WEBP, ICO 파일만 업로드할 수 있습니다")
		return
	}
	if err := storage.ValidateFileSize(req.Size, storage.MaxIconSize); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
		return
	}

	tool, err := ctrl.toolService.GetTool(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to load tool for icon upload", err, map[string]interface{}{"tool_id": id})
		return
	}

	response, err := ctrl.storage.PresignIconUpload(c.Request.Context(), tool.Slug, req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"tool_id":  id,
			"filename": req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "업로드 URL 발급에 실패했습니다")
		return
	}

	log.Info("Icon upload URL issued", map[string]interface{}{
		"tool_id": id,
		"key":     response.Key,
	})
	c.JSON(http.StatusOK, response)
}
