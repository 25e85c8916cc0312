package matcher

import (
	"time"

	"azubimatch/pkg/models"
)

// Scoring weights are contractual: together with the sub-score thresholds
// they determine observable ranking order and must not drift.
const (
	weightProfile      = 0.25
	weightSkills       = 0.30
	weightLocation     = 0.20
	weightExperience   = 0.15
	weightAvailability = 0.10
)

// experienceCeilingMonths is the requirement level at which the experience
// sub-score bottoms out.
const experienceCeilingMonths = 48.0

// Scorer computes a weighted multi-factor compatibility score in [0,1] per
// candidate, with a per-factor breakdown for audit.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score returns the final weighted score and its explanation for one
// (job, candidate) pair.
func (s *Scorer) Score(job *models.Job, c *models.Candidate) (float64, models.Explanation) {
	expl := models.Explanation{
		ProfileCompleteness: c.Completeness(),
		SkillsMatch:         s.skillsScore(job, c),
		LocationFit:         s.locationScore(job, c),
		ExperienceLevel:     s.experienceScore(job),
		Availability:        s.availabilityScore(c),
	}

	expl.Overall = expl.ProfileCompleteness*weightProfile +
		expl.SkillsMatch*weightSkills +
		expl.LocationFit*weightLocation +
		expl.ExperienceLevel*weightExperience +
		expl.Availability*weightAvailability

	return expl.Overall, expl
}

// skillsScore is the cosine similarity between the job and candidate
// embeddings, clamped to [0,1]. Profiles without an embedding score a
// neutral 0.5.
func (s *Scorer) skillsScore(job *models.Job, c *models.Candidate) float64 {
	if len(job.Embedding) == 0 || len(c.Embedding) == 0 {
		return 0.5
	}
	return clamp01(CosineSimilarity(job.Embedding, c.Embedding))
}

func (s *Scorer) locationScore(job *models.Job, c *models.Candidate) float64 {
	if job.IsRemote {
		return 1.0
	}
	if c.WillingToRelocate {
		return 0.9
	}
	return 0.7
}

// experienceScore penalizes candidates linearly as the job's minimum
// experience requirement rises toward four years, floored at 0.4.
func (s *Scorer) experienceScore(job *models.Job) float64 {
	score := 1.0 - float64(job.MinExperienceMonths)/experienceCeilingMonths
	if score < 0.4 {
		return 0.4
	}
	return score
}

func (s *Scorer) availabilityScore(c *models.Candidate) float64 {
	if c.AvailableFrom == nil {
		return 0.8
	}

	days := c.AvailableFrom.Sub(s.now()).Hours() / 24
	switch {
	case days <= 30:
		return 1.0
	case days <= 90:
		return 0.8
	default:
		return 0.6
	}
}
