// Package store owns all persistence for the matching engine. The engine
// only sees the narrow Store interface so its logic stays unit-testable
// without a database.
package store

import (
	"context"
	"errors"

	"azubimatch/pkg/models"
)

// ErrJobNotFound is returned when a job identifier does not resolve to a
// stored job.
var ErrJobNotFound = errors.New("job not found")

// Store is the persistence surface one matching run depends on: two
// mandatory reads, two soft exclusion reads, and one best-effort upsert.
type Store interface {
	// GetJob fetches the target job. Returns ErrJobNotFound for unknown IDs.
	GetJob(ctx context.Context, jobID string) (*models.Job, error)

	// ListAvailableCandidates fetches the candidate pool, pre-filtered at
	// the query layer to stage "available" and completeness >= 0.5, bounded
	// by limit.
	ListAvailableCandidates(ctx context.Context, limit int) ([]models.Candidate, error)

	// ListMatchedCandidateIDs returns candidates already present in the
	// match cache for the job.
	ListMatchedCandidateIDs(ctx context.Context, jobID string) (map[string]struct{}, error)

	// ListFeedbackExclusions returns candidates with rejected or suppressed
	// feedback for the job.
	ListFeedbackExclusions(ctx context.Context, jobID string) (map[string]struct{}, error)

	// UpsertMatches writes the final match list, keyed by
	// (job_id, candidate_id), overwriting score and explanation on conflict.
	UpsertMatches(ctx context.Context, matches []models.MatchResult) error
}
