package workers

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
)

// jobLimiter tracks the rate limiter state for a single job.
type jobLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter bounds how often matching runs may be triggered per job.
// Each run rescoring the full pool is O(n), so a misbehaving client
// hammering one job must not monopolize the pool.
type RateLimiter struct {
	limit         rate.Limit
	burst         int
	limiters      map[string]*jobLimiter
	mu            sync.Mutex
	logger        logging.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan bool
}

// NewRateLimiter creates a per-job rate limiter from the configured
// runs-per-minute budget.
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	burst := cfg.Workers.RateLimit / 10
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		limit:         rate.Limit(float64(cfg.Workers.RateLimit) / 60.0),
		burst:         burst,
		limiters:      make(map[string]*jobLimiter),
		logger:        logging.GetGlobalLogger().WithField("component", "rate_limiter"),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan bool),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow reports whether another matching run may start for the job now.
func (rl *RateLimiter) Allow(jobID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	jl, exists := rl.limiters[jobID]
	if !exists {
		jl = &jobLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[jobID] = jl
	}
	jl.lastSeen = time.Now()

	allowed := jl.limiter.Allow()
	if !allowed {
		rl.logger.Debug("Match run rejected by rate limiter", map[string]interface{}{"job_id": jobID})
	}
	return allowed
}

// TrackedJobs returns how many jobs currently hold limiter state.
func (rl *RateLimiter) TrackedJobs() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}

// cleanupRoutine drops limiter state for jobs not seen in a while.
func (rl *RateLimiter) cleanupRoutine() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for jobID, jl := range rl.limiters {
				if jl.lastSeen.Before(cutoff) {
					delete(rl.limiters, jobID)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}
