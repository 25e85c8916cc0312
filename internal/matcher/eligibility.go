package matcher

import (
	"time"

	"azubimatch/pkg/models"
)

// maxStartDelayMonths is how far in the future a candidate may become
// available before a full-time job stops considering them.
const maxStartDelayMonths = 3

// minCompleteness is the profile-completeness floor below which a candidate
// is never scored.
const minCompleteness = 0.5

// EligibilityFilter applies the hard gates a scoring function should not
// need to reason about. Pure predicate, no side effects.
type EligibilityFilter struct {
	now func() time.Time
}

// NewEligibilityFilter creates a filter using the wall clock.
func NewEligibilityFilter() *EligibilityFilter {
	return &EligibilityFilter{now: time.Now}
}

// Apply returns the candidates that pass every gate, preserving pool order.
func (f *EligibilityFilter) Apply(job *models.Job, candidates []models.Candidate, excluded map[string]struct{}) []models.Candidate {
	eligible := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if f.isEligible(job, &c, excluded) {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

func (f *EligibilityFilter) isEligible(job *models.Job, c *models.Candidate, excluded map[string]struct{}) bool {
	if _, skip := excluded[c.ID]; skip {
		return false
	}

	// The query layer already filters stage and completeness; re-check both
	// so a caller-supplied pool cannot bypass the gates.
	if c.Stage != models.CandidateStageAvailable {
		return false
	}
	if c.Completeness() < minCompleteness {
		return false
	}

	// Full-time roles need candidates who can start within three months.
	if job.ContractType == models.ContractTypeFullTime && c.AvailableFrom != nil {
		cutoff := f.now().AddDate(0, maxStartDelayMonths, 0)
		if c.AvailableFrom.After(cutoff) {
			return false
		}
	}

	return true
}
