package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
	"azubimatch/internal/matcher"
	"azubimatch/pkg/models"
	"azubimatch/pkg/utils"
)

// Pool-level submission errors. Run-level failures travel inside RunOutcome.
var (
	ErrNotRunning  = errors.New("worker pool is not running")
	ErrRateLimited = errors.New("rate limit exceeded for job")
	ErrQueueFull   = errors.New("job queue is full")
)

// RunOutcome is the result of one matching run processed by a worker.
type RunOutcome struct {
	Response  *models.MatchResponse
	Err       error
	RequestID string
	Duration  time.Duration
}

// MatchJob is a queued matching run.
type MatchJob struct {
	ID         string
	JobID      string
	K          int
	ResultChan chan RunOutcome
	Context    context.Context
	CreatedAt  time.Time
}

// Worker represents a single worker goroutine
type Worker struct {
	ID       int
	JobChan  chan MatchJob
	QuitChan chan bool
	Pool     *WorkerPool
	logger   logging.Logger
}

// WorkerPool manages multiple worker goroutines and the run queue
type WorkerPool struct {
	config      *config.Config
	runner      matcher.Runner
	workers     []*Worker
	jobQueue    chan MatchJob
	dispatcher  *Dispatcher
	rateLimiter *RateLimiter
	logger      logging.Logger
	mu          sync.RWMutex
	running     bool
	stats       *PoolStats
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	mu                    sync.RWMutex
	RunsQueued            int64         `json:"runs_queued"`
	RunsProcessed         int64         `json:"runs_processed"`
	RunsSuccessful        int64         `json:"runs_successful"`
	RunsFailed            int64         `json:"runs_failed"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
}

// NewWorkerPool creates a new worker pool around the given engine.
func NewWorkerPool(cfg *config.Config, runner matcher.Runner) *WorkerPool {
	logger := logging.GetGlobalLogger()

	pool := &WorkerPool{
		config:      cfg,
		runner:      runner,
		jobQueue:    make(chan MatchJob, cfg.Workers.QueueSize),
		rateLimiter: NewRateLimiter(cfg),
		logger:      logger,
		stats:       &PoolStats{},
	}

	pool.workers = make([]*Worker, cfg.Workers.PoolSize)
	for i := 0; i < cfg.Workers.PoolSize; i++ {
		pool.workers[i] = &Worker{
			ID:       i + 1,
			JobChan:  make(chan MatchJob),
			QuitChan: make(chan bool),
			Pool:     pool,
			logger:   logger.WithField("worker_id", i+1),
		}
	}

	pool.dispatcher = NewDispatcher(pool.jobQueue, pool.workers)

	logger.Info("Worker pool initialized", map[string]interface{}{"pool_size": cfg.Workers.PoolSize})
	return pool
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	wp.dispatcher.Start()

	for _, worker := range wp.workers {
		go worker.Start()
	}

	wp.running = true
	wp.logger.Info("Worker pool started", map[string]interface{}{"workers": len(wp.workers)})
	return nil
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return nil
	}

	wp.dispatcher.Stop()

	for _, worker := range wp.workers {
		worker.Stop()
	}

	close(wp.jobQueue)

	wp.running = false
	wp.logger.Info("Worker pool stopped")
	return nil
}

// Submit queues one matching run and blocks until it completes, the
// configured timeout elapses, or ctx is cancelled.
func (wp *WorkerPool) Submit(ctx context.Context, jobID string, k int) (*RunOutcome, error) {
	if !wp.IsRunning() {
		return nil, ErrNotRunning
	}

	if !wp.rateLimiter.Allow(jobID) {
		return nil, fmt.Errorf("%w %s", ErrRateLimited, jobID)
	}

	job := MatchJob{
		ID:         utils.GenerateRequestID(),
		JobID:      jobID,
		K:          k,
		ResultChan: make(chan RunOutcome, 1),
		Context:    ctx,
		CreatedAt:  time.Now(),
	}

	wp.stats.mu.Lock()
	wp.stats.RunsQueued++
	wp.stats.mu.Unlock()

	select {
	case wp.jobQueue <- job:
		wp.logger.Debug("Match run submitted to queue", map[string]interface{}{
			"run_id": job.ID,
			"job_id": jobID,
		})
	case <-time.After(5 * time.Second):
		return nil, ErrQueueFull
	}

	select {
	case outcome := <-job.ResultChan:
		return &outcome, nil
	case <-time.After(wp.config.Workers.Timeout):
		return nil, fmt.Errorf("match run timed out after %v", wp.config.Workers.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// GetStats returns current pool statistics
func (wp *WorkerPool) GetStats() PoolStats {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	stats := PoolStats{
		RunsQueued:          wp.stats.RunsQueued,
		RunsProcessed:       wp.stats.RunsProcessed,
		RunsSuccessful:      wp.stats.RunsSuccessful,
		RunsFailed:          wp.stats.RunsFailed,
		TotalProcessingTime: wp.stats.TotalProcessingTime,
	}
	if stats.RunsProcessed > 0 {
		stats.AverageProcessingTime = stats.TotalProcessingTime / time.Duration(stats.RunsProcessed)
	}

	return stats
}

// Start starts the worker goroutine
func (w *Worker) Start() {
	w.logger.Debug("Worker started")

	for {
		select {
		case job := <-w.JobChan:
			w.processJob(job)
		case <-w.QuitChan:
			w.logger.Debug("Worker stopping")
			return
		}
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.QuitChan <- true
}

// processJob runs a single matching run through the engine.
func (w *Worker) processJob(job MatchJob) {
	startTime := time.Now()

	w.Pool.stats.mu.Lock()
	w.Pool.stats.RunsProcessed++
	w.Pool.stats.mu.Unlock()

	response, err := w.Pool.runner.Run(job.Context, job.JobID, job.K)

	processingTime := time.Since(startTime)
	outcome := RunOutcome{
		Response:  response,
		Err:       err,
		RequestID: job.ID,
		Duration:  processingTime,
	}

	w.Pool.stats.mu.Lock()
	w.Pool.stats.TotalProcessingTime += processingTime
	if err != nil {
		w.Pool.stats.RunsFailed++
	} else {
		w.Pool.stats.RunsSuccessful++
	}
	w.Pool.stats.mu.Unlock()

	// Send result back (non-blocking)
	select {
	case job.ResultChan <- outcome:
		w.logger.Debug("Match run completed", map[string]interface{}{
			"run_id":          job.ID,
			"job_id":          job.JobID,
			"processing_time": processingTime,
			"success":         err == nil,
		})
	case <-time.After(100 * time.Millisecond):
		w.logger.Debug("Result channel timeout - client may have disconnected", map[string]interface{}{
			"run_id": job.ID,
		})
	}
}
