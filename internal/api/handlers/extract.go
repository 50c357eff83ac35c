package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobtrail-utils/internal/api/middleware"
	"jobtrail-utils/internal/extractor"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/models"
	"jobtrail-utils/pkg/utils"
)

var validate = validator.New()

// ExtractHandler handles job posting extraction requests
func ExtractHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.ExtractRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind extract request", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Extract request validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Processing extract request", map[string]interface{}{
			"url": req.URL,
		})

		job, err := orch.Extract(c.Request().Context(), req.URL, req.Options)
		if err != nil {
			return extractionErrorResponse(c, requestID, err)
		}

		logger.Info("Extract request completed", map[string]interface{}{
			"processing_time": utils.FormatDuration(time.Since(startTime)),
			"job_title":       job.Title,
			"company":         job.CompanyName,
			"provider":        job.Metadata.Provider,
		})

		return c.JSON(http.StatusOK, models.ExtractResponse{
			Success:        true,
			Job:            job,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		})
	}
}

// extractionErrorResponse maps a pipeline error onto the API surface.
// Extraction errors carry their own status mapping; anything else is a
// 502 because the pipeline only fails on upstream trouble once input
// validation has passed.
func extractionErrorResponse(c echo.Context, requestID string, err error) error {
	logger := logging.LogWithRequestID(requestID)

	if ee, ok := utils.AsExtractionError(err); ok {
		logger.Warn("Extraction failed", map[string]interface{}{
			"kind":  string(ee.Kind),
			"error": ee.Error(),
		})
		return c.JSON(ee.HTTPStatus(), models.ErrorResponse{
			Error:     string(ee.Kind),
			Message:   ee.Error(),
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	logger.Error("Extraction failed with unexpected error", map[string]interface{}{
		"error": err.Error(),
	})
	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:     "extraction_failed",
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
