package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobtrail-utils/internal/extractor"
)

// ProviderHealthHandler reports the circuit state of every provider
func ProviderHealthHandler(orch *extractor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, orch.ProviderHealth())
	}
}
