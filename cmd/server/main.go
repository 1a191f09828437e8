package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ikkim/toolchest-backend/config"
	"github.com/ikkim/toolchest-backend/internal/app/controller"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/cache"
	"github.com/ikkim/toolchest-backend/internal/db"
	"github.com/ikkim/toolchest-backend/internal/middleware"
	"github.com/ikkim/toolchest-backend/internal/monitoring"
	"github.com/ikkim/toolchest-backend/internal/router"
	"github.com/ikkim/toolchest-backend/internal/scheduler"
	"github.com/ikkim/toolchest-backend/internal/storage"
	"github.com/ikkim/toolchest-backend/internal/websocket"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/ikkim/toolchest-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting ToolChest admin backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(database, cfg.Admin); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis 는 선택 사항, 없으면 프로세스 내 캐시와 만료 기반 로그아웃
	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	appCache, err := newCache(cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize cache", err)
	}

	// Initialize repositories
	toolRepo := repository.NewToolRepository(database)
	tagRepo := repository.NewTagRepository(database)
	relationRepo := repository.NewRelationshipRepository(database)
	usageRepo := repository.NewUsageRepository(database)
	alertRepo := repository.NewAlertRepository(database)
	errorLogRepo := repository.NewErrorLogRepository(database)
	adminRepo := repository.NewAdminUserRepository(database)

	// Monitoring
	collector := monitoring.NewCollector(
		cfg.Monitoring.SnapshotRetention,
		monitoring.WithDBConnections(func() int { return db.OpenConnections(database) }),
		monitoring.WithCacheHitRate(appCache.HitRate),
	)
	hub := websocket.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run(ctx)

	// Initialize services
	minSeverity, ok := model.ParseSeverity(cfg.Analytics.AlertMinimumSeverity)
	if !ok {
		logger.Warn("Unknown alert minimum severity, using medium", map[string]interface{}{
			"value": cfg.Analytics.AlertMinimumSeverity,
		})
		minSeverity = model.SeverityMedium
	}

	var revoker service.TokenRevoker
	var revocationChecker middleware.RevocationChecker
	if redisClient != nil {
		blacklist := redis.NewTokenBlacklist(redisClient)
		revoker = blacklist
		revocationChecker = blacklist
	}

	authService := service.NewAuthService(
		adminRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		revoker,
	)
	toolService := service.NewToolService(toolRepo, appCache, cfg.Cache.DefaultTTL)
	tagService := service.NewTagService(tagRepo, appCache, cfg.Cache.DefaultTTL)
	relationService := service.NewRelationshipService(
		toolRepo,
		tagRepo,
		relationRepo,
		appCache,
		cfg.Cache.DefaultTTL,
		cfg.Analytics.ConfirmationThreshold,
	)
	analyticsService := service.NewAnalyticsService(
		toolRepo,
		usageRepo,
		alertRepo,
		errorLogRepo,
		collector,
		hub,
		appCache,
		service.AnalyticsOptions{
			DefaultWindowDays:    cfg.Analytics.DefaultWindowDays,
			ResponseTimeBaseline: cfg.Analytics.ResponseTimeBaseline,
			ErrorRateBaseline:    cfg.Analytics.ErrorRateBaseline,
			MinimumSeverity:      minSeverity,
			CacheTTL:             cfg.Cache.DefaultTTL,
			ChartTTL:             cfg.Cache.ChartTTL,
		},
	)

	// Background jobs
	monitoringScheduler := scheduler.NewMonitoringScheduler(
		scheduler.Intervals{
			Snapshot: cfg.Monitoring.SnapshotInterval,
			Alerts:   cfg.Monitoring.AlertInterval,
			Sweep:    cfg.Cache.DefaultTTL,
		},
		collector,
		hub,
		analyticsService,
		appCache,
	)
	if err := monitoringScheduler.Start(); err != nil {
		logger.Fatal("Failed to start monitoring scheduler", err)
	}

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	toolController := controller.NewToolController(toolService, analyticsService)
	tagController := controller.NewTagController(tagService, relationService)
	relationshipController := controller.NewRelationshipController(relationService)
	analyticsController := controller.NewAnalyticsController(analyticsService)
	monitoringController := controller.NewMonitoringController(analyticsService, hub, appCache)
	uploadController := controller.NewUploadController(storage.NewS3Storage(ctx, cfg.S3), toolService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	if revocationChecker != nil {
		authMiddleware = authMiddleware.WithRevocation(revocationChecker)
	}

	// Setup router
	r := router.NewRouter(
		authController,
		toolController,
		tagController,
		relationshipController,
		analyticsController,
		monitoringController,
		uploadController,
		authMiddleware,
		collector,
		healthChecks(database, redisClient),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	monitoringScheduler.Stop()
	cancel()

	logger.Info("Server stopped successfully")
}

func connectRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.Redis.Host == "" {
		logger.Info("Redis not configured, using in-process cache")
		return nil
	}
	client, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return client
}

func newCache(cfg *config.Config, client *goredis.Client) (*cache.Cache, error) {
	if client != nil {
		return cache.New(cache.NewRedisBackend(client, cfg.Cache.KeyPrefix), cfg.Cache.DefaultTTL), nil
	}
	backend, err := cache.NewMemoryBackend(cfg.Cache.MaxEntries)
	if err != nil {
		return nil, err
	}
	return cache.New(backend, cfg.Cache.DefaultTTL), nil
}

func healthChecks(database *gorm.DB, client *goredis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
