package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageRepository_WindowAndCounts(t *testing.T) {
	testDB := setupRepositoryTest(t)
	repo := NewUsageRepository(testDB)
	ctx := context.Background()

	base64 := createTool(t, testDB, "base64", true)
	hash := createTool(t, testDB, "hash", true)
	retired := createTool(t, testDB, "retired", false)
	encoding := createTag(t, testDB, "encoding", false)
	link(t, testDB, base64.ID, encoding.ID, time.Now().UTC())

	day := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	stats := []model.ToolUsageStat{
		{ToolID: base64.ID, Success: true, CreatedAt: day},
		{ToolID: base64.ID, Success: false, CreatedAt: day.Add(time.Hour)},
		{ToolID: hash.ID, Success: true, CreatedAt: day.Add(2 * time.Hour)},
		{ToolID: retired.ID, Success: true, CreatedAt: day.Add(3 * time.Hour)},
		{ToolID: hash.ID, Success: true, CreatedAt: day.AddDate(0, 0, 30)},
	}
	for i := range stats {
		require.NoError(t, repo.Create(ctx, &stats[i]))
	}

	window := UsageQuery{Start: day.AddDate(0, 0, -1), End: day.AddDate(0, 0, 1)}

	events, err := repo.FindEvents(ctx, window)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.True(t, events[0].Timestamp.Equal(day))

	withInactive := window
	withInactive.IncludeInactive = true
	events, err = repo.FindEvents(ctx, withInactive)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	byTool, err := repo.CountByTool(ctx, window)
	require.NoError(t, err)
	require.Len(t, byTool, 2)
	assert.Equal(t, base64.ID, byTool[0].ToolID)
	assert.Equal(t, int64(2), byTool[0].Count)

	byTag, err := repo.CountByTag(ctx, window)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, int64(2), byTag[0].Count)

	tagged := window
	tagged.TagIDs = []uint{encoding.ID}
	events, err = repo.FindEvents(ctx, tagged)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	rate, total, err := repo.FailureRate(ctx, window.Start, window.End)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.InDelta(t, 0.25, rate, 0.0001)
}

func TestUsageRepository_FailureRateEmpty(t *testing.T) {
	testDB := setupRepositoryTest(t)
	repo := NewUsageRepository(testDB)

	rate, total, err := repo.FailureRate(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Zero(t, rate)
	assert.Zero(t, total)
}
