package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"azubimatch/pkg/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestScore_RemoteJobWithoutEmbeddings(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Scorer{now: fixedClock(now)}

	job := &models.Job{ID: "job-1", IsRemote: true, MinExperienceMonths: 0}
	cand := &models.Candidate{ID: "cand-1", Stage: models.CandidateStageAvailable, ProfileCompleteness: floatPtr(1.0)}

	score, expl := s.Score(job, cand)

	// 0.25*1.0 + 0.30*0.5 + 0.20*1.0 + 0.15*1.0 + 0.10*0.8
	assert.InDelta(t, 0.83, score, 1e-9)
	assert.InDelta(t, 1.0, expl.ProfileCompleteness, 1e-9)
	assert.InDelta(t, 0.5, expl.SkillsMatch, 1e-9)
	assert.InDelta(t, 1.0, expl.LocationFit, 1e-9)
	assert.InDelta(t, 1.0, expl.ExperienceLevel, 1e-9)
	assert.InDelta(t, 0.8, expl.Availability, 1e-9)
	assert.Equal(t, score, expl.Overall)
	assert.False(t, expl.Explore)
}

func TestScore_SkillsUseEmbeddingSimilarity(t *testing.T) {
	s := &Scorer{now: fixedClock(time.Now())}

	job := &models.Job{IsRemote: true, Embedding: []float32{1, 0}}

	identical := &models.Candidate{Embedding: []float32{1, 0}}
	_, expl := s.Score(job, identical)
	assert.InDelta(t, 1.0, expl.SkillsMatch, 1e-9)

	orthogonal := &models.Candidate{Embedding: []float32{0, 1}}
	_, expl = s.Score(job, orthogonal)
	assert.InDelta(t, 0.0, expl.SkillsMatch, 1e-9)

	// Negative similarity clamps to zero rather than dragging the total down.
	opposite := &models.Candidate{Embedding: []float32{-1, 0}}
	_, expl = s.Score(job, opposite)
	assert.InDelta(t, 0.0, expl.SkillsMatch, 1e-9)
}

func TestScore_LocationTiers(t *testing.T) {
	s := &Scorer{now: fixedClock(time.Now())}

	_, expl := s.Score(&models.Job{IsRemote: true}, &models.Candidate{})
	assert.InDelta(t, 1.0, expl.LocationFit, 1e-9)

	_, expl = s.Score(&models.Job{IsRemote: false}, &models.Candidate{WillingToRelocate: true})
	assert.InDelta(t, 0.9, expl.LocationFit, 1e-9)

	_, expl = s.Score(&models.Job{IsRemote: false}, &models.Candidate{WillingToRelocate: false})
	assert.InDelta(t, 0.7, expl.LocationFit, 1e-9)
}

func TestScore_ExperienceDecaysWithRequirement(t *testing.T) {
	s := &Scorer{now: fixedClock(time.Now())}

	cases := []struct {
		months int
		want   float64
	}{
		{0, 1.0},
		{12, 0.75},
		{24, 0.5},
		{36, 0.4},  // 0.25 raw, floored
		{48, 0.4},  // 0.0 raw, floored
		{120, 0.4}, // beyond the ceiling, still floored
	}
	for _, tc := range cases {
		_, expl := s.Score(&models.Job{MinExperienceMonths: tc.months}, &models.Candidate{})
		assert.InDelta(t, tc.want, expl.ExperienceLevel, 1e-9, "min_experience_months=%d", tc.months)
	}
}

func TestScore_AvailabilityTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &Scorer{now: fixedClock(now)}

	cases := []struct {
		name string
		from *time.Time
		want float64
	}{
		{"no date", nil, 0.8},
		{"already available", timePtr(now.AddDate(0, 0, -10)), 1.0},
		{"within 30 days", timePtr(now.AddDate(0, 0, 30)), 1.0},
		{"within 90 days", timePtr(now.AddDate(0, 0, 60)), 0.8},
		{"beyond 90 days", timePtr(now.AddDate(0, 0, 120)), 0.6},
	}
	for _, tc := range cases {
		_, expl := s.Score(&models.Job{}, &models.Candidate{AvailableFrom: tc.from})
		assert.InDelta(t, tc.want, expl.Availability, 1e-9, tc.name)
	}
}

func TestScore_MissingCompletenessDefaultsToNeutral(t *testing.T) {
	s := &Scorer{now: fixedClock(time.Now())}

	_, expl := s.Score(&models.Job{}, &models.Candidate{})
	assert.InDelta(t, 0.5, expl.ProfileCompleteness, 1e-9)
}
