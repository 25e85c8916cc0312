package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"azubimatch/internal/api/handlers"
	"azubimatch/internal/api/middleware"
	"azubimatch/internal/config"
	"azubimatch/internal/matcher/workers"
	"azubimatch/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, poolManager *workers.PoolManager, db *store.PostgresStore, runCache *store.RunCache) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(dbPinger(db), cachePinger(runCache)))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler)

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		match := v1.Group("/match")
		{
			match.POST("", handlers.MatchHandler(cfg, poolManager))
			match.GET("/:job_id/last", handlers.LastRunHandler(runCache))
		}

		workerRoutes := v1.Group("/workers")
		{
			workerRoutes.GET("/stats", handlers.WorkerStatsHandler(poolManager))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Azubimatch Matching Engine",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}

// A nil concrete store must become a nil interface, not a typed non-nil
// interface around a nil pointer.

func dbPinger(db *store.PostgresStore) handlers.Pinger {
	if db == nil {
		return nil
	}
	return db
}

func cachePinger(rc *store.RunCache) handlers.Pinger {
	if rc == nil {
		return nil
	}
	return rc
}
