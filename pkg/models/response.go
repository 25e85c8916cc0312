package models

import "time"

// MatchResponse is the success payload of a matching run.
type MatchResponse struct {
	Success         bool          `json:"success"`
	Matches         []MatchResult `json:"matches"`
	TotalCandidates int           `json:"total_candidates"`
	Returned        int           `json:"returned"`
}

// ErrorResponse is the error payload for all non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunSummary is the per-job record of the most recent matching run, kept in
// the run cache for operational visibility.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	JobID           string        `json:"job_id"`
	TotalCandidates int           `json:"total_candidates"`
	Returned        int           `json:"returned"`
	Duration        time.Duration `json:"duration"`
	RanAt           time.Time     `json:"ran_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
