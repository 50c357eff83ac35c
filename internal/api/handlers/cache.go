package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobtrail-utils/internal/api/middleware"
	"jobtrail-utils/internal/extractor"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/models"
)

// CacheClearHandler drops every cached extraction result
func CacheClearHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		if err := orch.ClearCache(c.Request().Context()); err != nil {
			logger.Error("Cache clear failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "cache_clear_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Cache cleared", map[string]interface{}{})
		return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
	}
}

// CacheInvalidateHandler drops the cached result for one source URL,
// passed as the url query parameter.
func CacheInvalidateHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		sourceURL := c.QueryParam("url")
		if err := orch.InvalidateCache(c.Request().Context(), sourceURL); err != nil {
			return extractionErrorResponse(c, requestID, err)
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "invalidated"})
	}
}
