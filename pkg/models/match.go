package models

// Feedback types recorded against a prior match. Rejected and suppressed
// entries permanently exclude the candidate from future runs of the same job.
const (
	FeedbackRejected   = "rejected"
	FeedbackSuppressed = "suppressed"
	FeedbackAccepted   = "accepted"
	FeedbackShortlist  = "shortlisted"
)

// Explanation is the per-factor score breakdown persisted alongside each
// match for later display and audit.
type Explanation struct {
	Overall             float64 `json:"overall"`
	ProfileCompleteness float64 `json:"profile_completeness"`
	SkillsMatch         float64 `json:"skills_match"`
	LocationFit         float64 `json:"location_fit"`
	ExperienceLevel     float64 `json:"experience_level"`
	Availability        float64 `json:"availability"`
	Explore             bool    `json:"explore,omitempty"`
}

// MatchResult is one (job, candidate) pairing produced by a matching run.
type MatchResult struct {
	JobID       string      `json:"job_id"`
	CandidateID string      `json:"candidate_id"`
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
}

// FeedbackEntry records a human decision on a previously surfaced match.
// Written by the employer UI; read-only from the matcher's perspective.
type FeedbackEntry struct {
	JobID        string `json:"job_id"`
	CandidateID  string `json:"candidate_id"`
	FeedbackType string `json:"feedback_type"`
}
