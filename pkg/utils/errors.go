package utils

import (
	"fmt"
	"net/http"
)

// MatchError carries an HTTP-visible classification for a failed matching
// run. Message is the exact body the API returns; Detail stays in the logs.
type MatchError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *MatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewValidationError(message string) *MatchError {
	return &MatchError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewNotFoundError(message string) *MatchError {
	return &MatchError{
		Code:    http.StatusNotFound,
		Message: message,
	}
}

// NewUpstreamError signals that one of the two mandatory reads (job or
// candidate pool) failed. Fatal for the run; the caller may retry later.
func NewUpstreamError(detail string) *MatchError {
	return &MatchError{
		Code:    http.StatusInternalServerError,
		Message: "Failed to fetch candidates",
		Detail:  detail,
	}
}

func NewInternalError(detail string) *MatchError {
	return &MatchError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Detail:  detail,
	}
}
