package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/cache"
	"github.com/ikkim/toolchest-backend/internal/db"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/middleware"
	"github.com/ikkim/toolchest-backend/internal/monitoring"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const testJWTSecret = "controller-test-secret"

type controllerFixture struct {
	db        *gorm.DB
	cache     *cache.Cache
	tools     service.ToolService
	tags      service.TagService
	relations service.RelationshipService
	analytics service.AnalyticsService
	collector *monitoring.Collector

	toolIDs map[string]uint
	tagIDs  map[string]uint
}

func setupControllerTest(t *testing.T) *controllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	backend, err := cache.NewMemoryBackend(256)
	require.NoError(t, err)
	c := cache.New(backend, time.Minute)

	toolRepo := repository.NewToolRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	relationRepo := repository.NewRelationshipRepository(testDB)

	f := &controllerFixture{
		db:        testDB,
		cache:     c,
		collector: monitoring.NewCollector(10),
		toolIDs:   map[string]uint{},
		tagIDs:    map[string]uint{},
	}
	f.tools = service.NewToolService(toolRepo, c, time.Minute)
	f.tags = service.NewTagService(tagRepo, c, time.Minute)
	f.relations = service.NewRelationshipService(toolRepo, tagRepo, relationRepo, c, time.Minute, 0)
	f.analytics = service.NewAnalyticsService(
		toolRepo,
		repository.NewUsageRepository(testDB),
		repository.NewAlertRepository(testDB),
		repository.NewErrorLogRepository(testDB),
		f.collector,
		nil,
		c,
		service.AnalyticsOptions{},
	)

	for i, slug := range []string{"base64", "json-formatter"} {
		tool := &model.Tool{Slug: slug, Name: "tools." + slug, DisplayOrder: i, IsActive: true}
		require.NoError(t, testDB.Create(tool).Error)
		f.toolIDs[slug] = tool.ID
	}
	retired := &model.Tool{Slug: "retired", Name: "tools.retired", DisplayOrder: 9, IsActive: false}
	require.NoError(t, testDB.Create(retired).Error)
	f.toolIDs["retired"] = retired.ID

	for _, slug := range []string{"encoding", "developer"} {
		tag := &model.Tag{Slug: slug, Name: slug}
		require.NoError(t, testDB.Create(tag).Error)
		f.tagIDs[slug] = tag.ID
	}
	link := &model.ToolTag{ToolID: f.toolIDs["base64"], TagID: f.tagIDs["encoding"]}
	require.NoError(t, testDB.Omit(clause.Associations).Create(link).Error)

	return f
}

// asAdmin stands in for the auth middleware
func asAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint(1))
		c.Set(middleware.UserEmailKey, "admin@toolchest.local")
		c.Set(middleware.UserRoleKey, string(model.AdminRoleAdmin))
		c.Next()
	}
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	var response apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
