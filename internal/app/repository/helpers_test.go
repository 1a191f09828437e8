package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func createTool(t *testing.T, testDB *gorm.DB, slug string, active bool) *model.Tool {
	tool := &model.Tool{Slug: slug, Name: "tools." + slug, IsActive: active}
	require.NoError(t, testDB.Create(tool).Error)
	return tool
}

func createTag(t *testing.T, testDB *gorm.DB, slug string, system bool) *model.Tag {
	tag := &model.Tag{Slug: slug, Name: slug, IsSystem: system}
	require.NoError(t, testDB.Create(tag).Error)
	return tag
}

func link(t *testing.T, testDB *gorm.DB, toolID, tagID uint, at time.Time) {
	tt := &model.ToolTag{ToolID: toolID, TagID: tagID, CreatedAt: at}
	require.NoError(t, testDB.Omit(clause.Associations).Create(tt).Error)
}

var errDiskIO = errors.New("disk I/O error")

// failNthDelete makes the nth DELETE against table fail, counting from 1
func failNthDelete(t *testing.T, testDB *gorm.DB, table string, n int) {
	calls := 0
	err := testDB.Callback().Delete().Before("gorm:delete").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		calls++
		if calls == n {
			_ = tx.AddError(errDiskIO)
		}
	})
	require.NoError(t, err)
}
