package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobtrail-utils/internal/extractor"
	"jobtrail-utils/pkg/models"
)

var startTime = time.Now()

const serviceVersion = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports whether the service can serve extractions.
// The service is degraded when every provider circuit is open.
func ReadinessHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		health := orch.ProviderHealth()

		anyUsable := len(health.Providers) == 0
		for _, p := range health.Providers {
			if p.State != "open" {
				anyUsable = true
				break
			}
		}

		status := "ready"
		providersCheck := "ok"
		code := http.StatusOK
		if !anyUsable {
			status = "degraded"
			providersCheck = "all circuits open"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Uptime:    time.Since(startTime),
			Checks: map[string]string{
				"api":       "ok",
				"providers": providersCheck,
			},
		})
	}
}

// StatusHandler provides detailed service status, including the state
// of every provider circuit.
func StatusHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api": "operational",
		}
		for _, p := range orch.ProviderHealth().Providers {
			checks["provider_"+p.Provider] = p.State
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
	})
}
