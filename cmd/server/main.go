package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaygp/boxd/internal/cache"
	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/container"
	"github.com/shaygp/boxd/internal/database"
	"github.com/shaygp/boxd/internal/handlers"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/middleware"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/telemetry"
	"go.uber.org/zap"
)

const serviceName = "boxd-social"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== boxd social server starting ===",
		zap.String("environment", cfg.Environment),
	)

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	tp, err := telemetry.InitTracer(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it profiles are read straight from the store
	var profileCache profiles.Cache
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, profile cache disabled", err)
	} else {
		profileCache = redisClient
	}

	c, err := container.New(cfg, db, profileCache)
	if err != nil {
		logger.Log.Fatal("Failed to build service container", zap.Error(err))
	}
	c.OnCleanup(func(context.Context) error { return database.Close() })
	if redisClient != nil {
		c.OnCleanup(func(context.Context) error { return redisClient.Close() })
	}
	if tp != nil {
		c.OnCleanup(func(ctx context.Context) error { return telemetry.Shutdown(ctx, tp) })
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	checks := map[string]handlers.HealthCheck{"database": database.Health}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	r.GET("/health", handlers.Health(serviceName, checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.StoreTimeoutMiddleware(cfg.StoreTimeout))
	h := handlers.NewHandlers(c)
	h.RegisterRoutes(api,
		middleware.AuthMiddleware(c.Auth()),
		middleware.OptionalAuthMiddleware(c.Auth()),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("boxd social server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := c.Cleanup(ctx); err != nil {
		logger.WarnWithFields("Cleanup finished with errors", err)
	}

	logger.Log.Info("Server exited")
}
