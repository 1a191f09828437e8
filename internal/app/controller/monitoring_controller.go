package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

// StreamServer upgrades a request into a live monitoring stream (websocket hub)
type StreamServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error
}

// CacheAdmin is the part of the shared cache exposed to operators
type CacheAdmin interface {
	Invalidate(ctx context.Context, pattern string) int
	Stats(ctx context.Context) cache.Stats
}

type MonitoringController struct {
	analyticsService service.AnalyticsService
	stream           StreamServer
	cache            CacheAdmin
}

func NewMonitoringController(analyticsService service.AnalyticsService, stream StreamServer, c CacheAdmin) *MonitoringController {
	return &MonitoringController{
		analyticsService: analyticsService,
		stream:           stream,
		cache:            c,
	}
}

type ReportErrorRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message" binding:"required,max=2000"`
	Stack   string                 `json:"stack"`
	Context map[string]interface{} `json:"context"`
}

type InvalidateCacheRequest struct {
	Pattern string `json:"pattern"`
}

// GetPerformance 현재 성능 지표
// GET /api/v1/admin/monitoring/performance
func (ctrl *MonitoringController) GetPerformance(c *gin.Context) {
	metrics := ctrl.analyticsService.GetSystemPerformanceMetrics(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"performance": metrics})
}

// GetDashboard 시스템 상태 대시보드
// GET /api/v1/admin/monitoring/dashboard
func (ctrl *MonitoringController) GetDashboard(c *gin.Context) {
	dashboard, err := ctrl.analyticsService.GetSystemHealthDashboard(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to build health dashboard", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// GetRealtime 최근 스냅샷 목록
// GET /api/v1/admin/monitoring/realtime?limit=60
func (ctrl *MonitoringController) GetRealtime(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit", 0)
	if err != nil {
		respondError(c, "Invalid realtime query", err, nil)
		return
	}
	snapshots := ctrl.analyticsService.GetRealTimeMetrics(limit)
	c.JSON(http.StatusOK, gin.H{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// Stream 웹소켓 실시간 스트림 (토큰은 ?token= 으로 전달 가능)
// GET /api/v1/admin/monitoring/stream
func (ctrl *MonitoringController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)
	if err := ctrl.stream.ServeWS(c.Writer, c.Request, userID); err != nil {
		// upgrader 가 이미 응답을 작성함
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// ListAlerts 알림 목록
// GET /api/v1/admin/monitoring/alerts?resolved=false&severity=high&limit=50
func (ctrl *MonitoringController) ListAlerts(c *gin.Context) {
	resolved, err := parseBoolQuery(c, "resolved")
	if err != nil {
		respondError(c, "Invalid alert query", err, nil)
		return
	}
	limit, err := parseIntQuery(c, "limit", 0)
	if err != nil {
		respondError(c, "Invalid alert query", err, nil)
		return
	}

	filter := repository.AlertFilter{
		Resolved: resolved,
		Severity: model.AlertSeverity(strings.ToLower(c.Query("severity"))),
		Limit:    limit,
	}
	switch filter.Severity {
	case "", model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		respondError(c, "Invalid alert query", apperrors.Validation(apperrors.ValidationInvalidFormat,
			"severity must be low, medium, high or critical", map[string]string{"severity": "invalid"}), nil)
		return
	}

	alerts, err := ctrl.analyticsService.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list alerts", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// AcknowledgeAlert 알림 확인 처리
// POST /api/v1/admin/monitoring/alerts/:id/acknowledge
func (ctrl *MonitoringController) AcknowledgeAlert(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	by, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	id := c.Param("id")
	alert, err := ctrl.analyticsService.AcknowledgeAlert(c.Request.Context(), id, by)
	if err != nil {
		respondError(c, "Failed to acknowledge alert", err, map[string]interface{}{"alert_id": id})
		return
	}

	log.Info("Alert acknowledged", map[string]interface{}{
		"alert_id": id,
		"by":       by,
	})
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// ResolveAlert 알림 해결 처리
// POST /api/v1/admin/monitoring/alerts/:id/resolve
func (ctrl *MonitoringController) ResolveAlert(c *gin.Context) {
	id := c.Param("id")
	alert, err := ctrl.analyticsService.ResolveAlert(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to resolve alert", err, map[string]interface{}{"alert_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// ListErrors 에러 로그 조회
// GET /api/v1/admin/monitoring/errors?start=&end=&level=&resolved=&limit=&offset=
func (ctrl *MonitoringController) ListErrors(c *gin.Context) {
	var query service.ErrorLogQuery
	var err error

	if query.Start, err = parseTimeQuery(c, "start"); err != nil {
		respondError(c, "Invalid error log query", err, nil)
		return
	}
	if query.End, err = parseTimeQuery(c, "end"); err != nil {
		respondError(c, "Invalid error log query", err, nil)
		return
	}
	if query.Resolved, err = parseBoolQuery(c, "resolved"); err != nil {
		respondError(c, "Invalid error log query", err, nil)
		return
	}
	if query.Limit, err = parseIntQuery(c, "limit", 0); err != nil {
		respondError(c, "Invalid error log query", err, nil)
		return
	}
	if query.Offset, err = parseIntQuery(c, "offset", 0); err != nil {
		respondError(c, "Invalid error log query", err, nil)
		return
	}
	query.Level = strings.ToLower(c.Query("level"))

	page, err := ctrl.analyticsService.GetErrorLogs(c.Request.Context(), query)
	if err != nil {
		respondError(c, "Failed to list error logs", err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ResolveError 에러 로그 해결 처리
// POST /api/v1/admin/monitoring/errors/:id/resolve
func (ctrl *MonitoringController) ResolveError(c *gin.Context) {
	id := c.Param("id")
	entry, err := ctrl.analyticsService.ResolveError(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to resolve error log", err, map[string]interface{}{"error_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error_log": entry})
}

// ReportError 프론트엔드 에러 수집
// POST /api/v1/errors
func (ctrl *MonitoringController) ReportError(c *gin.Context) {
	var req ReportErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "Invalid error report", bindError(err), nil)
		return
	}

	fields := make(map[string]interface{}, len(req.Context)+3)
	for k, v := range req.Context {
		fields[k] = v
	}
	if req.Stack != "" {
		fields["stack"] = req.Stack
	}
	fields["source"] = "client"
	fields["user_agent"] = c.Request.UserAgent()
	if requestID, ok := c.Get(middleware.RequestIDKey); ok {
		fields["request_id"] = requestID
	}

	level := model.ErrorLevel(strings.ToLower(req.Level))
	entry := ctrl.analyticsService.LogErrorWithLevel(c.Request.Context(), level, req.Message, nil, fields)
	if entry == nil {
		apperrors.InternalError(c, "에러 로그 저장에 실패했습니다")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": entry.ID})
}

// InvalidateCache 캐시 무효화 (빈 pattern 이면 전체)
// POST /api/v1/admin/cache/invalidate
func (ctrl *MonitoringController) InvalidateCache(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req InvalidateCacheRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, "Invalid cache invalidation request", bindError(err), nil)
			return
		}
	}

	removed := ctrl.cache.Invalidate(c.Request.Context(), req.Pattern)
	log.Info("Cache invalidated by admin", map[string]interface{}{
		"pattern": req.Pattern,
		"removed": removed,
	})
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// CacheStats 캐시 통계
// GET /api/v1/admin/cache/stats
func (ctrl *MonitoringController) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cache": ctrl.cache.Stats(c.Request.Context())})
}
