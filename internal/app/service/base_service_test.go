package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequired_NamesEveryMissingField(t *testing.T) {
	var nilPtr *uint
	err := ValidateRequired(map[string]interface{}{
		"type":     "assign",
		"tool_ids": []uint{},
		"tag_ids":  nil,
		"name":     "   ",
		"tag_id":   nilPtr,
		"limit":    0,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "missing required fields: name, tag_id, tag_ids, tool_ids", appErr.Message)
	assert.Len(t, appErr.Fields, 4)
}

func TestValidateRequired_AllPresent(t *testing.T) {
	assert.NoError(t, ValidateRequired(map[string]interface{}{
		"type":    "remove",
		"tag_ids": []uint{1},
	}))
}

func TestBaseService_GetCachedAndInvalidate(t *testing.T) {
	backend, err := cache.NewMemoryBackend(8)
	require.NoError(t, err)
	base := newBaseService(cache.New(backend, time.Minute), 0)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := getCached(ctx, &base, "relationships:all", 0, producer)
	assert.Equal(t, 1, v)
	v, _ = getCached(ctx, &base, "relationships:all", 0, producer)
	assert.Equal(t, 1, v)

	base.invalidateCache(ctx, "relationships:")
	v, _ = getCached(ctx, &base, "relationships:all", 0, producer)
	assert.Equal(t, 2, v)
}
