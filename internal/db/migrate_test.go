package db

import (
	"testing"

	"github.com/ikkim/toolchest-backend/config"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsIdempotent(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	admin := config.AdminConfig{Email: "admin@toolchest.local", Password: "changeme2024", Name: "Admin"}

	require.NoError(t, Seed(testDB, admin))
	require.NoError(t, Seed(testDB, admin))

	var tools, tags, links, admins int64
	testDB.Model(&model.Tool{}).Count(&tools)
	testDB.Model(&model.Tag{}).Count(&tags)
	testDB.Model(&model.ToolTag{}).Count(&links)
	testDB.Model(&model.AdminUser{}).Count(&admins)

	assert.Equal(t, int64(5), tools)
	assert.Equal(t, int64(6), tags)
	assert.Equal(t, int64(11), links)
	assert.Equal(t, int64(1), admins)
}

func TestSeed_RejectsWeakAdminPassword(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	err = Seed(testDB, config.AdminConfig{Email: "admin@toolchest.local", Password: "short"})
	assert.Error(t, err)
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, Seed(testDB, config.AdminConfig{}))
	require.NoError(t, TruncateAllTables(testDB))

	var tools int64
	testDB.Model(&model.Tool{}).Count(&tools)
	assert.Zero(t, tools)
}
