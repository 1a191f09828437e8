package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMissingFields_NamesEveryField(t *testing.T) {
	err := MissingFields([]string{"tagIds", "toolIds", "type"})

	assert.Equal(t, KindValidation, err.Kind)
	assert.Contains(t, err.Message, "tagIds, toolIds, type")
	assert.Len(t, err.Fields, 3)
	assert.Empty(t, err.Field)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode string
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound, AlertNotFound},
		{"duplicate tag slug", stderrors.New("UNIQUE constraint failed: tags.slug"), KindConflict, TagSlugExists},
		{"duplicate tool slug", stderrors.New(`duplicate key value violates unique constraint "idx_tools_slug"`), KindConflict, ToolSlugExists},
		{"connection refused", stderrors.New("dial tcp: connection refused"), KindStorage, InternalDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "find alert")
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestClassify_KeepsExistingAppError(t *testing.T) {
	original := NotFoundError(TagNotFound, "tag not found", "42")
	wrapped := fmt.Errorf("resolve: %w", original)

	assert.Same(t, original, Classify(wrapped, "ignored"))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.ErrorIs(t, wrapped, &AppError{Kind: KindNotFound})
}

func TestRespond_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validation(ValidationInvalidInput, "bad", nil), http.StatusBadRequest},
		{"not found", NotFoundError(AlertNotFound, "missing", "a1"), http.StatusNotFound},
		{"conflict", Conflict(TagSlugExists, "dup", "slug"), http.StatusConflict},
		{"storage", Storage("execute bulk operation", stderrors.New("tx aborted")), http.StatusServiceUnavailable},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Respond(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRespond_StorageReportsZeroChanges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, Storage("auto-resolve orphans", stderrors.New("disk full")))

	assert.Contains(t, w.Body.String(), `"changes":0`)
	assert.Contains(t, w.Body.String(), InternalDatabaseError)
}
