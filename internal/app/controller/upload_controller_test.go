package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err      error
	toolSlug string
}

func (p *fakePresigner) PresignIconUpload(_ context.Context, toolSlug, filename, _ string) (*storage.PresignedURLResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.toolSlug = toolSlug
	key := "tool-icons/" + toolSlug + "/" + filename
	return &storage.PresignedURLResponse{
		UploadURL: "https://bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example.com/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func setupUploadRouter(f *controllerFixture, presigner IconPresigner) *gin.Engine {
	ctrl := NewUploadController(presigner, f.tools)
	router := gin.New()
	router.POST("/admin/tools/:id/icon/presigned-url", asAdmin(), ctrl.PresignToolIcon)
	return router
}

func TestUploadController_PresignToolIcon(t *testing.T) {
	f := setupControllerTest(t)
	presigner := &fakePresigner{}
	router := setupUploadRouter(f, presigner)

	path := fmt.Sprintf("/admin/tools/%d/icon/presigned-url", f.toolIDs["base64"])

	t.Run("success", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, path, map[string]interface{}{
			"filename":     "icon.png",
			"content_type": "image/png",
			"size":         2048,
		})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "tool-icons/base64/icon.png", body["key"])
		assert.NotEmpty(t, body["upload_url"])
		assert.Equal(t, "base64", presigner.toolSlug)
	})

	t.Run("rejects non-icon content type", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, path, map[string]interface{}{
			"filename":     "icon.gif",
			"content_type": "image/gif",
			"size":         2048,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.UploadInvalidFileType, decodeError(t, w).Error)
	})

	t.Run("rejects oversized icon", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, path, map[string]interface{}{
			"filename":     "icon.png",
			"content_type": "image/png",
			"size":         storage.MaxIconSize + 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.ValidationInvalidRange, decodeError(t, w).Error)
	})

	t.Run("unknown tool", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/admin/tools/9999/icon/presigned-url", map[string]interface{}{
			"filename":     "icon.png",
			"content_type": "image/png",
			"size":         2048,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperrors.ToolNotFound, decodeError(t, w).Error)
	})
}

func TestUploadController_PresignFailure(t *testing.T) {
	f := setupControllerTest(t)
	router := setupUploadRouter(f, &fakePresigner{err: errors.New("credentials expired")})

	path := fmt.Sprintf("/admin/tools/%d/icon/presigned-url", f.toolIDs["base64"])
	w := performJSON(router, http.MethodPost, path, map[string]interface{}{
		"filename":     "icon.svg",
		"content_type": "image/svg+xml",
		"size":         100,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.UploadFailed, decodeError(t, w).Error)
}
