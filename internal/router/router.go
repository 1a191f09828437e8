package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/config"
	"github.com/ikkim/toolchest-backend/internal/app/controller"
	"github.com/ikkim/toolchest-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency (database, redis) is reachable
type HealthCheck func(ctx context.Context) error

type Router struct {
	authController         *controller.AuthController
	toolController         *controller.ToolController
	tagController          *controller.TagController
	relationshipController *controller.RelationshipController
	analyticsController    *controller.AnalyticsController
	monitoringController   *controller.MonitoringController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	observer               middleware.RequestObserver
	healthChecks           map[string]HealthCheck
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	toolController *controller.ToolController,
	tagController *controller.TagController,
	relationshipController *controller.RelationshipController,
	analyticsController *controller.AnalyticsController,
	monitoringController *controller.MonitoringController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	observer middleware.RequestObserver,
	healthChecks map[string]HealthCheck,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		toolController:         toolController,
		tagController:          tagController,
		relationshipController: relationshipController,
		analyticsController:    analyticsController,
		monitoringController:   monitoringController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		observer:               observer,
		healthChecks:           healthChecks,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(r.observer))
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		// 공개 API (프론트엔드)
		v1.GET("/tools", r.toolController.ListTools)
		v1.POST("/tools/:slug/usage", r.toolController.RecordUsage)
		v1.GET("/tags", r.tagController.ListTags)
		v1.GET("/tags/:slug", r.tagController.GetTag)
		v1.POST("/errors", r.monitoringController.ReportError)

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			tools := admin.Group("/tools")
			{
				tools.GET("", r.toolController.ListTools)
				tools.POST("", r.toolController.CreateTool)
				tools.PATCH("/:id", r.toolController.UpdateTool)
				tools.POST("/:id/icon/presigned-url", r.uploadController.PresignToolIcon)
			}

			tags := admin.Group("/tags")
			{
				tags.POST("", r.tagController.CreateTag)
				tags.GET("/statistics", r.tagController.TagStatistics)
			}

			relationships := admin.Group("/relationships")
			{
				relationships.GET("", r.relationshipController.ListRelationships)
				relationships.POST("/bulk/preview", r.relationshipController.PreviewBulkOperation)
				relationships.POST("/bulk", r.relationshipController.ExecuteBulkOperation)
				relationships.GET("/orphans", r.relationshipController.FindOrphans)
				relationships.POST("/orphans/resolve", r.relationshipController.ResolveOrphans)
				relationships.POST("/validate", r.relationshipController.ValidateRelationships)
			}

			analytics := admin.Group("/analytics")
			{
				analytics.GET("/summary", r.analyticsController.GetSummary)
				analytics.GET("/charts", r.analyticsController.GetCharts)
				analytics.GET("/export", r.analyticsController.Export)
			}

			monitoring := admin.Group("/monitoring")
			{
				monitoring.GET("/performance", r.monitoringController.GetPerformance)
				monitoring.GET("/dashboard", r.monitoringController.GetDashboard)
				monitoring.GET("/realtime", r.monitoringController.GetRealtime)
				monitoring.GET("/stream", r.monitoringController.Stream)
				monitoring.GET("/alerts", r.monitoringController.ListAlerts)
				monitoring.POST("/alerts/:id/acknowledge", r.monitoringController.AcknowledgeAlert)
				monitoring.POST("/alerts/:id/resolve", r.monitoringController.ResolveAlert)
				monitoring.GET("/errors", r.monitoringController.ListErrors)
				monitoring.POST("/errors/:id/resolve", r.monitoringController.ResolveError)
			}

			cache := admin.Group("/cache")
			{
				cache.GET("/stats", r.monitoringController.CacheStats)
				cache.POST("/invalidate", r.monitoringController.InvalidateCache)
			}
		}
	}

	return router
}

// health 의존성 중 하나라도 실패하면 503
func (r *Router) health(c *gin.Context) {
	checks := make(map[string]string, len(r.healthChecks))
	status := http.StatusOK
	for name, check := range r.healthChecks {
		if err := check(c.Request.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"message": "ToolChest admin API is running",
		"checks":  checks,
	})
}
