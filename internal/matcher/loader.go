package matcher

import (
	"context"
	"fmt"

	"azubimatch/internal/logging"
	"azubimatch/internal/store"
	"azubimatch/pkg/models"
)

// RunInput is everything one matching run needs: the target job, the
// pre-filtered candidate pool, and the set of candidate IDs that must never
// be re-surfaced for this job.
type RunInput struct {
	Job        *models.Job
	Candidates []models.Candidate
	Excluded   map[string]struct{}
}

// Loader assembles the inputs for a single matching run. Read-only, one
// best-effort fetch per source, no retries.
type Loader struct {
	store       store.Store
	maxPoolSize int
	logger      logging.Logger
}

// NewLoader creates a loader bounded to maxPoolSize candidates per run.
func NewLoader(st store.Store, maxPoolSize int) *Loader {
	return &Loader{
		store:       st,
		maxPoolSize: maxPoolSize,
		logger:      logging.GetGlobalLogger(),
	}
}

// Load fetches the job, the candidate pool and the exclusion set. The job
// and candidate reads are mandatory; the two exclusion reads are soft — on
// failure the run proceeds with no exclusions known from that source.
func (l *Loader) Load(ctx context.Context, jobID string) (*RunInput, error) {
	job, err := l.store.GetJob(ctx, jobID)
	if err != nil {
		if err == store.ErrJobNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("fetch job %s: %w", jobID, err)
	}

	candidates, err := l.store.ListAvailableCandidates(ctx, l.maxPoolSize)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	excluded := make(map[string]struct{})

	matched, err := l.store.ListMatchedCandidateIDs(ctx, jobID)
	if err != nil {
		l.logger.Warn("Failed to load prior matches, proceeding without them", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	} else {
		for id := range matched {
			excluded[id] = struct{}{}
		}
	}

	feedback, err := l.store.ListFeedbackExclusions(ctx, jobID)
	if err != nil {
		l.logger.Warn("Failed to load feedback exclusions, proceeding without them", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	} else {
		for id := range feedback {
			excluded[id] = struct{}{}
		}
	}

	return &RunInput{
		Job:        job,
		Candidates: candidates,
		Excluded:   excluded,
	}, nil
}
