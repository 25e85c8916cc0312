package models

import "time"

// CandidateStageAvailable is the only lifecycle stage the matcher considers.
// All other stages (onboarding, placed, paused, ...) are filtered out at the
// query layer and re-checked defensively before scoring.
const CandidateStageAvailable = "available"

// Candidate is a person profile eligible for matching. The matcher treats
// candidates as read-only; profile editing happens elsewhere.
type Candidate struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Stage               string     `json:"stage"`
	Bio                 string     `json:"bio"`
	AvailableFrom       *time.Time `json:"available_from,omitempty"`
	ProfileCompleteness *float64   `json:"profile_completeness,omitempty"`
	Embedding           []float32  `json:"-"`
	HomeLat             *float64   `json:"home_lat,omitempty"`
	HomeLon             *float64   `json:"home_lon,omitempty"`
	CommuteMode         string     `json:"commute_mode,omitempty"`
	CommuteMaxMinutes   int        `json:"commute_max_minutes,omitempty"`
	WillingToRelocate   bool       `json:"willing_to_relocate"`
}

// Completeness returns the profile completeness ratio, defaulting to 0.5
// when the profile has never been scored.
func (c *Candidate) Completeness() float64 {
	if c.ProfileCompleteness == nil {
		return 0.5
	}
	return *c.ProfileCompleteness
}
