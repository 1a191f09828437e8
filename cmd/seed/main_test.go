package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, withAssignments bool) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", toolsSheet))
	toolRows := [][]interface{}{
		{"slug", "name", "description", "icon_url", "display_order", "is_active"},
		{"Base64", "tools.base64", "Encode and decode", "", 1, "true"},
		{"hash-generator", "tools.hash", "", "", 2, "false"},
		{"base64", "dup", "", "", 3, "true"},
		{"", "missing slug"},
	}
	writeRows(t, f, toolsSheet, toolRows)

	_, err := f.NewSheet(tagsSheet)
	require.NoError(t, err)
	writeRows(t, f, tagsSheet, [][]interface{}{
		{"slug", "name", "description", "color", "is_system"},
		{"encoding", "Encoding", "", "#3B82F6", "false"},
		{"security", "Security", "", "", "true"},
	})

	if withAssignments {
		_, err = f.NewSheet(assignmentsSheet)
		require.NoError(t, err)
		writeRows(t, f, assignmentsSheet, [][]interface{}{
			{"tool_slug", "tag_slug"},
			{"base64", "encoding"},
			{"hash-generator", "security"},
			{"hash-generator", "encoding"},
			{"hash-generator", "unknown"},
			{"ghost", "encoding"},
		})
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
}

func TestReadCatalog(t *testing.T) {
	cat, err := readCatalog(buildWorkbook(t, true))
	require.NoError(t, err)

	require.Len(t, cat.Tools, 2)
	assert.Equal(t, "base64", cat.Tools[0].Slug)
	assert.Equal(t, 1, cat.Tools[0].DisplayOrder)
	require.NotNil(t, cat.Tools[1].IsActive)
	assert.False(t, *cat.Tools[1].IsActive)

	require.Len(t, cat.Tags, 2)
	assert.True(t, cat.Tags[1].IsSystem)

	assert.Equal(t, []string{"security", "encoding", "unknown"}, cat.Assignments["hash-generator"])
	assert.Equal(t, 2, cat.Skipped)
}

func TestReadCatalog_AssignmentsOptional(t *testing.T) {
	cat, err := readCatalog(buildWorkbook(t, false))
	require.NoError(t, err)
	assert.Empty(t, cat.Assignments)
}

func TestReadCatalog_RequiresToolsSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = readCatalog(buf)
	assert.Error(t, err)
}

func TestCatalogImporter_Import(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	toolRepo := repository.NewToolRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	importer := &catalogImporter{
		tools:     service.NewToolService(toolRepo, nil, 0),
		tags:      service.NewTagService(tagRepo, nil, 0),
		toolRepo:  toolRepo,
		tagRepo:   tagRepo,
		relations: service.NewRelationshipService(toolRepo, tagRepo, repository.NewRelationshipRepository(testDB), nil, 0, 0),
	}

	cat, err := readCatalog(buildWorkbook(t, true))
	require.NoError(t, err)

	report, err := importer.Import(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ToolsCreated)
	assert.Equal(t, 2, report.TagsCreated)
	assert.Equal(t, 3, report.Assigned)
	assert.Len(t, report.Warnings, 2)

	// 두 번째 실행은 변경 없음
	report, err = importer.Import(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ToolsExisting)
	assert.Equal(t, 2, report.TagsExisting)
	assert.Equal(t, 0, report.Assigned)

	var links int64
	require.NoError(t, testDB.Model(&model.ToolTag{}).Count(&links).Error)
	assert.EqualValues(t, 3, links)
}
