package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAnalyticsRouter(f *controllerFixture) *gin.Engine {
	ctrl := NewAnalyticsController(f.analytics)

	router := gin.New()
	admin := router.Group("/admin", asAdmin())
	admin.GET("/analytics/summary", ctrl.GetSummary)
	admin.GET("/analytics/charts", ctrl.GetCharts)
	admin.GET("/analytics/export", ctrl.Export)
	return router
}

func TestAnalyticsController_Summary(t *testing.T) {
	f := setupControllerTest(t)
	router := setupAnalyticsRouter(f)

	ctx := context.Background()
	require.NoError(t, f.analytics.RecordUsage(ctx, "base64", service.UsageInput{Action: "encode"}))
	require.NoError(t, f.analytics.RecordUsage(ctx, "base64", service.UsageInput{Action: "decode"}))
	require.NoError(t, f.analytics.RecordUsage(ctx, "json-formatter", service.UsageInput{}))

	w := performJSON(router, http.MethodGet, "/admin/analytics/summary?period=day", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["summary"].(map[string]interface{})
	assert.EqualValues(t, 3, summary["total_usage"])
	assert.EqualValues(t, 2, summary["unique_tools"])
	assert.Equal(t, "day", summary["period"])
}

func TestAnalyticsController_SummaryRejectsBadQuery(t *testing.T) {
	f := setupControllerTest(t)
	router := setupAnalyticsRouter(f)

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"unknown period", "?period=fortnight", apperrors.AnalyticsInvalidPeriod},
		{"reversed range", "?start=2024-03-10&end=2024-03-01", apperrors.AnalyticsInvalidRange},
		{"range too long", "?start=0001-01-01&period=day", apperrors.AnalyticsInvalidRange},
		{"bad date", "?start=03/01/2024", apperrors.ValidationInvalidFormat},
		{"bad tool ids", "?tool_ids=a", apperrors.ValidationInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodGet, "/admin/analytics/summary"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
}

func TestAnalyticsController_Charts(t *testing.T) {
	f := setupControllerTest(t)
	router := setupAnalyticsRouter(f)

	require.NoError(t, f.analytics.RecordUsage(context.Background(), "base64", service.UsageInput{}))

	w := performJSON(router, http.MethodGet, "/admin/analytics/charts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	charts := decodeBody(t, w)["charts"].([]interface{})
	require.NotEmpty(t, charts)

	ids := make([]string, 0, len(charts))
	for _, c := range charts {
		ids = append(ids, c.(map[string]interface{})["id"].(string))
	}
	assert.Contains(t, ids, "usage_over_time")
	assert.Contains(t, ids, "top_tools")
}

func TestAnalyticsController_Export(t *testing.T) {
	f := setupControllerTest(t)
	router := setupAnalyticsRouter(f)

	require.NoError(t, f.analytics.RecordUsage(context.Background(), "base64", service.UsageInput{}))

	end := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	w := performJSON(router, http.MethodGet, "/admin/analytics/export?start=2024-01-01&end="+end, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "analytics_20240101_")
	// xlsx 는 zip 컨테이너
	assert.Equal(t, "PK", string(w.Body.Bytes()[:2]))
}
