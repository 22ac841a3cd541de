package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dept-timetable-api/api/swagger"
	"github.com/noah-isme/dept-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/dept-timetable-api/internal/middleware"
	"github.com/noah-isme/dept-timetable-api/internal/repository"
	"github.com/noah-isme/dept-timetable-api/internal/service"
	"github.com/noah-isme/dept-timetable-api/pkg/cache"
	"github.com/noah-isme/dept-timetable-api/pkg/config"
	"github.com/noah-isme/dept-timetable-api/pkg/database"
	"github.com/noah-isme/dept-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dept-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dept-timetable-api/pkg/middleware/requestid"
)

// @title Department Timetable API
// @version 1.0.0
// @description Timetable auto-generation and conflict resolution for department classes
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, "up"); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo.Connected())

	timetableRepo := repository.NewTimetableRepository(db)
	timetableSvc := service.NewTimetableService(timetableRepo, db, cacheSvc, metricsSvc, validator.New(), logr, service.TimetableServiceConfig{
		Attempts:         cfg.Scheduler.Attempts,
		Seed:             cfg.Scheduler.Seed,
		DefaultLunchSlot: cfg.Scheduler.DefaultLunchSlot,
		CacheTTL:         cfg.Cache.TTL,
	})
	exportSvc := service.NewTimetableExportService(timetableSvc, logr, nil, nil)

	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
		r.GET("/metrics/summary", metricsHandler.Summary)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	timetables := api.Group("/timetables")
	timetables.GET("", timetableHandler.List)
	timetables.POST("", timetableHandler.Create)
	timetables.POST("/import", timetableHandler.Import)
	timetables.GET("/lookup", timetableHandler.Lookup)
	timetables.GET("/:id", timetableHandler.Get)
	timetables.PUT("/:id", timetableHandler.Update)
	timetables.DELETE("/:id", timetableHandler.Delete)
	timetables.GET("/:id/grid", timetableHandler.Grid)
	timetables.GET("/:id/export", timetableHandler.Export)
	timetables.POST("/:id/regenerate", timetableHandler.Regenerate)
	timetables.PATCH("/:id/entries/:blockId", timetableHandler.MoveEntry)
	timetables.DELETE("/:id/entries/:blockId", timetableHandler.DeleteEntry)
	timetables.POST("/:id/deleted/:blockId/restore", timetableHandler.RestoreEntry)
	timetables.DELETE("/:id/deleted/:blockId", timetableHandler.PurgeEntry)
	timetables.POST("/:id/templates", timetableHandler.AddTemplate)
	timetables.DELETE("/:id/templates/:blockId", timetableHandler.RemoveTemplate)
	timetables.POST("/:id/templates/:blockId/place", timetableHandler.PlaceTemplate)
	api.GET("/teachers/schedule", timetableHandler.TeacherSchedule)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
