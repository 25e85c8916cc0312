package models

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	JobID string `json:"job_id" validate:"required,uuid"`
	K     int    `json:"k" validate:"omitempty,min=1,max=100"`
}
