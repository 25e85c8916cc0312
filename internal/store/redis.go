package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
	"azubimatch/pkg/models"
)

// ErrNoRunSummary is returned when a job has no recorded run.
var ErrNoRunSummary = errors.New("no run summary recorded")

// RunCache keeps the most recent matching-run summary per job in Redis.
// Writes are best-effort; the engine treats cache failures as soft.
type RunCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRunCache creates a Redis-backed run cache from configuration.
func NewRunCache(cfg *config.Config) (*RunCache, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", cfg.Redis.URL, err)
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RunCache{
		client: redis.NewClient(opts),
		ttl:    cfg.Matching.RunCacheTTL,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Ping tests the Redis connection
func (r *RunCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RunCache) Close() error {
	return r.client.Close()
}

// StoreRunSummary records the outcome of a matching run, replacing any
// previous summary for the job.
func (r *RunCache) StoreRunSummary(ctx context.Context, summary models.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	if err := r.client.Set(ctx, r.runKey(summary.JobID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to store run summary", map[string]interface{}{
			"job_id": summary.JobID,
			"run_id": summary.RunID,
			"error":  err.Error(),
		})
		return fmt.Errorf("store run summary: %w", err)
	}
	return nil
}

// GetRunSummary returns the most recent run summary for a job.
func (r *RunCache) GetRunSummary(ctx context.Context, jobID string) (*models.RunSummary, error) {
	data, err := r.client.Get(ctx, r.runKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoRunSummary
		}
		return nil, fmt.Errorf("get run summary: %w", err)
	}

	var summary models.RunSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal run summary: %w", err)
	}
	return &summary, nil
}

func (r *RunCache) runKey(jobID string) string {
	return fmt.Sprintf("match:lastrun:%s", jobID)
}
