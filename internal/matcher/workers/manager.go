package workers

import (
	"context"
	"fmt"
	"sync"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
	"azubimatch/internal/matcher"
)

// PoolManager manages the worker pool lifecycle
type PoolManager struct {
	config      *config.Config
	runner      matcher.Runner
	pool        *WorkerPool
	logger      logging.Logger
	mu          sync.RWMutex
	initialized bool
}

// PoolManagerStats represents statistics for the pool manager
type PoolManagerStats struct {
	Initialized   bool      `json:"initialized"`
	PoolStats     PoolStats `json:"pool_stats"`
	WorkerCount   int       `json:"worker_count"`
	QueueCapacity int       `json:"queue_capacity"`
	TrackedJobs   int       `json:"tracked_jobs"`
}

// NewPoolManager creates a new worker pool manager
func NewPoolManager(cfg *config.Config, runner matcher.Runner) *PoolManager {
	return &PoolManager{
		config: cfg,
		runner: runner,
		logger: logging.GetGlobalLogger().WithField("component", "pool_manager"),
	}
}

// Initialize creates and starts the worker pool.
func (pm *PoolManager) Initialize() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.initialized {
		return fmt.Errorf("worker pool already initialized")
	}

	pm.pool = NewWorkerPool(pm.config, pm.runner)
	if err := pm.pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	pm.initialized = true
	pm.logger.Info("Worker pool initialized successfully")
	return nil
}

// Shutdown gracefully shuts down the worker pool
func (pm *PoolManager) Shutdown() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if !pm.initialized || pm.pool == nil {
		return nil
	}

	if err := pm.pool.Stop(); err != nil {
		pm.logger.Error("Error stopping worker pool", map[string]interface{}{"error": err.Error()})
		return err
	}

	pm.pool.rateLimiter.Stop()

	pm.initialized = false
	pm.logger.Info("Worker pool shutdown complete")
	return nil
}

// Submit queues a matching run on the worker pool.
func (pm *PoolManager) Submit(ctx context.Context, jobID string, k int) (*RunOutcome, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if !pm.initialized || pm.pool == nil {
		return nil, ErrNotRunning
	}

	return pm.pool.Submit(ctx, jobID, k)
}

// GetStats returns worker pool statistics
func (pm *PoolManager) GetStats() (*PoolManagerStats, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if !pm.initialized || pm.pool == nil {
		return nil, fmt.Errorf("worker pool not initialized")
	}

	return &PoolManagerStats{
		Initialized:   pm.initialized,
		PoolStats:     pm.pool.GetStats(),
		WorkerCount:   len(pm.pool.workers),
		QueueCapacity: pm.config.Workers.QueueSize,
		TrackedJobs:   pm.pool.rateLimiter.TrackedJobs(),
	}, nil
}

// IsHealthy returns true if the worker pool is healthy
func (pm *PoolManager) IsHealthy() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.initialized && pm.pool != nil && pm.pool.IsRunning()
}
