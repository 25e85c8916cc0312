package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azubimatch/internal/config"
	"azubimatch/pkg/models"
)

// stubRunner returns a canned response or error for every run.
type stubRunner struct {
	response *models.MatchResponse
	err      error
	delay    time.Duration
}

func (s *stubRunner) Run(ctx context.Context, jobID string, k int) (*models.MatchResponse, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func poolConfig() *config.Config {
	cfg, _ := config.LoadConfig("")
	cfg.Workers.PoolSize = 2
	cfg.Workers.QueueSize = 4
	cfg.Workers.RateLimit = 600 // keep the limiter out of the way
	cfg.Workers.Timeout = 5 * time.Second
	return cfg
}

func startedPool(t *testing.T, runner *stubRunner) *WorkerPool {
	t.Helper()

	pool := NewWorkerPool(poolConfig(), runner)
	require.NoError(t, pool.Start())
	t.Cleanup(func() {
		_ = pool.Stop()
		pool.rateLimiter.Stop()
	})
	return pool
}

func TestWorkerPool_SubmitReturnsOutcome(t *testing.T) {
	runner := &stubRunner{
		response: &models.MatchResponse{Success: true, Returned: 1},
	}
	pool := startedPool(t, runner)

	outcome, err := pool.Submit(context.Background(), "job-1", 5)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.NoError(t, outcome.Err)
	assert.True(t, outcome.Response.Success)
	assert.NotEmpty(t, outcome.RequestID)
}

func TestWorkerPool_RunErrorTravelsInOutcome(t *testing.T) {
	runErr := errors.New("pool read failed")
	pool := startedPool(t, &stubRunner{err: runErr})

	outcome, err := pool.Submit(context.Background(), "job-1", 5)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.ErrorIs(t, outcome.Err, runErr)
	assert.Nil(t, outcome.Response)
}

func TestWorkerPool_SubmitWhenStopped(t *testing.T) {
	pool := NewWorkerPool(poolConfig(), &stubRunner{})
	defer pool.rateLimiter.Stop()

	_, err := pool.Submit(context.Background(), "job-1", 5)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestWorkerPool_RateLimitedSubmit(t *testing.T) {
	cfg := poolConfig()
	cfg.Workers.RateLimit = 10 // burst of 1
	pool := NewWorkerPool(cfg, &stubRunner{response: &models.MatchResponse{Success: true}})
	require.NoError(t, pool.Start())
	t.Cleanup(func() {
		_ = pool.Stop()
		pool.rateLimiter.Stop()
	})

	_, err := pool.Submit(context.Background(), "job-1", 5)
	require.NoError(t, err)

	_, err = pool.Submit(context.Background(), "job-1", 5)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestWorkerPool_StatsCountRuns(t *testing.T) {
	pool := startedPool(t, &stubRunner{response: &models.MatchResponse{Success: true}})

	_, err := pool.Submit(context.Background(), "job-1", 5)
	require.NoError(t, err)
	_, err = pool.Submit(context.Background(), "job-2", 5)
	require.NoError(t, err)

	stats := pool.GetStats()
	assert.Equal(t, int64(2), stats.RunsQueued)
	assert.Equal(t, int64(2), stats.RunsProcessed)
	assert.Equal(t, int64(2), stats.RunsSuccessful)
	assert.Equal(t, int64(0), stats.RunsFailed)
}

func TestWorkerPool_DoubleStartFails(t *testing.T) {
	pool := startedPool(t, &stubRunner{})
	assert.Error(t, pool.Start())
}

func TestPoolManager_Lifecycle(t *testing.T) {
	pm := NewPoolManager(poolConfig(), &stubRunner{response: &models.MatchResponse{Success: true}})

	_, err := pm.Submit(context.Background(), "job-1", 5)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, pm.IsHealthy())

	require.NoError(t, pm.Initialize())
	assert.True(t, pm.IsHealthy())
	assert.Error(t, pm.Initialize())

	outcome, err := pm.Submit(context.Background(), "job-1", 5)
	require.NoError(t, err)
	assert.True(t, outcome.Response.Success)

	stats, err := pm.GetStats()
	require.NoError(t, err)
	assert.True(t, stats.Initialized)
	assert.Equal(t, 2, stats.WorkerCount)

	require.NoError(t, pm.Shutdown())
	assert.False(t, pm.IsHealthy())

	_, err = pm.GetStats()
	assert.Error(t, err)
}
