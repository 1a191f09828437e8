package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// GetSummary 사용량 요약
// GET /api/v1/admin/analytics/summary
// Query params: start, end (RFC3339 또는 YYYY-MM-DD), period, tool_ids, tag_ids, include_inactive
func (ctrl *AnalyticsController) GetSummary(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		respondError(c, "Invalid analytics query", err, nil)
		return
	}

	summary, err := ctrl.analyticsService.GetAnalyticsSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to build analytics summary", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetCharts 대시보드 차트 데이터
// GET /api/v1/admin/analytics/charts
func (ctrl *AnalyticsController) GetCharts(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		respondError(c, "Invalid analytics query", err, nil)
		return
	}

	charts, err := ctrl.analyticsService.GenerateCharts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to generate charts", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": charts})
}

// Export 분석 데이터를 xlsx 로 내려받기
// GET /api/v1/admin/analytics/export
func (ctrl *AnalyticsController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		respondError(c, "Invalid analytics query", err, nil)
		return
	}

	buf, err := ctrl.analyticsService.ExportAnalytics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to export analytics", err, nil)
		return
	}

	filename := "analytics.xlsx"
	if filter.Start != nil && filter.End != nil {
		filename = fmt.Sprintf("analytics_%s_%s.xlsx",
			filter.Start.UTC().Format("20060102"), filter.End.UTC().Format("20060102"))
	}

	log.Info("Analytics exported", map[string]interface{}{
		"bytes":    buf.Len(),
		"filename": filename,
	})

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
