package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobtrail-utils/internal/api/handlers"
	"jobtrail-utils/internal/api/middleware"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/extractor"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, orch *extractor.Orchestrator) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Extraction waits on browsers and model providers, so it gets a
	// longer budget than the rest of the API
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(orch))
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/providers", handlers.ProviderHealthHandler(orch))
	}

	e.GET("/status", handlers.StatusHandler(orch))

	v1 := e.Group("/api/v1")
	{
		v1.POST("/extract", handlers.ExtractHandler(orch))

		cacheGroup := v1.Group("/cache")
		{
			cacheGroup.DELETE("", handlers.CacheClearHandler(orch))
			cacheGroup.DELETE("/entry", handlers.CacheInvalidateHandler(orch))
		}

		v1.GET("/providers/health", handlers.ProviderHealthHandler(orch))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "JobTrail Extraction Service",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
