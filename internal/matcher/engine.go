package matcher

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
	"azubimatch/internal/store"
	"azubimatch/pkg/models"
	"azubimatch/pkg/utils"
)

// Runner is the engine surface the transport layer depends on.
type Runner interface {
	Run(ctx context.Context, jobID string, k int) (*models.MatchResponse, error)
}

// RunRecorder receives best-effort summaries of completed runs.
type RunRecorder interface {
	StoreRunSummary(ctx context.Context, summary models.RunSummary) error
}

// Engine composes the four pipeline stages for a single stateless matching
// run: load, filter, score, rank. Runs are independent and idempotent at
// (job, candidate) granularity; concurrent runs for the same job are not
// coordinated — the last upsert wins.
type Engine struct {
	cfg      *config.Config
	store    store.Store
	recorder RunRecorder
	loader   *Loader
	filter   *EligibilityFilter
	scorer   *Scorer
	ranker   *Ranker
	logger   logging.Logger
}

// NewEngine builds an engine from configuration. recorder may be nil to
// disable run summaries.
func NewEngine(cfg *config.Config, st store.Store, recorder RunRecorder) *Engine {
	scorer := NewScorer()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return &Engine{
		cfg:      cfg,
		store:    st,
		recorder: recorder,
		loader:   NewLoader(st, cfg.Matching.MaxPoolSize),
		filter:   NewEligibilityFilter(),
		scorer:   scorer,
		ranker: NewRanker(
			cfg.Matching.MMRLambda,
			cfg.Matching.MMRThreshold,
			cfg.Matching.ExploreMultiplier,
			scorer,
			rng,
		),
		logger: logging.GetGlobalLogger(),
	}
}

// Run executes one matching run for jobID and returns the final match list.
// k <= 0 falls back to the configured default; oversized values are capped.
func (e *Engine) Run(ctx context.Context, jobID string, k int) (*models.MatchResponse, error) {
	started := time.Now()

	if k <= 0 {
		k = e.cfg.Matching.DefaultK
	}
	if k > e.cfg.Matching.MaxK {
		k = e.cfg.Matching.MaxK
	}

	input, err := e.loader.Load(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, utils.NewNotFoundError("Job not found")
		}
		return nil, utils.NewUpstreamError(err.Error())
	}

	eligible := e.filter.Apply(input.Job, input.Candidates, input.Excluded)

	retained := make([]models.MatchResult, 0, len(eligible))
	for i := range eligible {
		score, expl := e.scorer.Score(input.Job, &eligible[i])
		if score < e.cfg.Matching.MinScore {
			continue
		}
		retained = append(retained, models.MatchResult{
			JobID:       input.Job.ID,
			CandidateID: eligible[i].ID,
			Score:       score,
			Explanation: expl,
		})
	}

	matches := e.ranker.Rank(input, retained, k)

	// Best-effort cache write: a failed upsert is logged, the computed list
	// is still returned.
	if err := e.store.UpsertMatches(ctx, matches); err != nil {
		e.logger.Error("Failed to persist match results", map[string]interface{}{
			"job_id":  jobID,
			"matches": len(matches),
			"error":   err.Error(),
		})
	}

	response := &models.MatchResponse{
		Success:         true,
		Matches:         matches,
		TotalCandidates: len(input.Candidates),
		Returned:        len(matches),
	}

	e.recordRun(ctx, jobID, response, time.Since(started))

	e.logger.Info("Matching run completed", map[string]interface{}{
		"job_id":          jobID,
		"k":               k,
		"pool_size":       len(input.Candidates),
		"eligible":        len(eligible),
		"above_threshold": len(retained),
		"returned":        len(matches),
		"processing_time": utils.FormatDuration(time.Since(started)),
	})

	return response, nil
}

func (e *Engine) recordRun(ctx context.Context, jobID string, resp *models.MatchResponse, duration time.Duration) {
	if e.recorder == nil {
		return
	}

	summary := models.RunSummary{
		RunID:           utils.GenerateRequestID(),
		JobID:           jobID,
		TotalCandidates: resp.TotalCandidates,
		Returned:        resp.Returned,
		Duration:        duration,
		RanAt:           time.Now(),
	}

	if err := e.recorder.StoreRunSummary(ctx, summary); err != nil {
		e.logger.Warn("Failed to record run summary", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
}
