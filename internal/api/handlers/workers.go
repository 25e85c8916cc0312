package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"azubimatch/internal/matcher/workers"
	"azubimatch/pkg/models"
)

// WorkerStatsHandler exposes worker pool statistics for monitoring.
func WorkerStatsHandler(pm *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := pm.GetStats()
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Worker pool not initialized"})
		}

		return c.JSON(http.StatusOK, stats)
	}
}
