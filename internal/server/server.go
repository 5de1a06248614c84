// Package server provides HTTP server setup and configuration.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/auth"
	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/handlers"
	"github.com/sebasr/device-timeseries/internal/middleware"
	"github.com/sebasr/device-timeseries/internal/repository"
)

const healthPath = "/api/v1/health"

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config     *config.Config
	DB         handlers.HealthChecker // Optional: health reports the DB as ok when nil
	DeviceRepo repository.DeviceRepository
	Fetcher    handlers.RangeFetcher
	Latest     handlers.LatestReader
	Ingestor   handlers.TelemetryIngestor
	Logger     *zap.Logger
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	// Set Gin to release mode to disable ANSI colors in logs
	gin.SetMode(gin.ReleaseMode)

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger, healthPath))

	// Add CORS middleware for web client support
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.NewRateLimitMiddleware(deps.Config.Server.RateLimit, time.Minute))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	jwtService := auth.NewJWTService(deps.Config.Auth.JWTSecret, deps.Config.Auth.TokenTTL)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	timeseriesHandler := handlers.NewTimeseriesHandler(deps.DeviceRepo, deps.Fetcher, deps.Latest)
	ingressHandler := handlers.NewIngressHandler(deps.DeviceRepo, deps.Ingestor, deps.Config.Timeseries.IngestTimeout)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Get)

		// Read routes
		read := v1.Group("")
		read.Use(authMiddleware.RequireScope(auth.ScopeRead))
		{
			read.GET("/devices/:id/sensors", timeseriesHandler.ListSensors)
			read.GET("/devices/:id/data", timeseriesHandler.FetchRange)
			read.GET("/devices/:id/data/latest", timeseriesHandler.DeviceLatest)
			read.GET("/data/latest", timeseriesHandler.FetchLatest)
		}

		// Device ingress
		v1.POST("/data/:field/:value", authMiddleware.RequireScope(auth.ScopeIngress), ingressHandler.Post)
	}

	return router
}
