package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"azubimatch/internal/logging"
	"azubimatch/pkg/models"
)

var startTime = time.Now()

const version = "1.0.0"

// Pinger is anything with a connectivity check (Postgres pool, Redis client).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler reports whether the service can serve matching runs:
// the database must answer, the run cache may be degraded.
func ReadinessHandler(db, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()

		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"api": "ok"}
		status := "ready"
		code := http.StatusOK

		if db == nil {
			checks["database"] = "not configured"
			status = "not ready"
			code = http.StatusServiceUnavailable
		} else if err := db.Ping(ctx); err != nil {
			logger.Warn("Readiness check: database unreachable", map[string]interface{}{"error": err.Error()})
			checks["database"] = "unreachable"
			status = "not ready"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}

		if cache == nil {
			checks["run_cache"] = "not configured"
		} else if err := cache.Ping(ctx); err != nil {
			// Degraded, not down: the engine treats the run cache as soft
			checks["run_cache"] = "unreachable"
		} else {
			checks["run_cache"] = "ok"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
	}

	return c.JSON(http.StatusOK, response)
}

// StatusHandler provides detailed service status
func StatusHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "operational",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api":     "operational",
			"matcher": "operational",
		},
	}

	return c.JSON(http.StatusOK, response)
}
