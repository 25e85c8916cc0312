package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"azubimatch/internal/config"
	"azubimatch/internal/logging"
	"azubimatch/internal/matcher/workers"
	"azubimatch/internal/store"
	"azubimatch/pkg/models"
	"azubimatch/pkg/utils"
)

var validate = validator.New()

// MatchSubmitter is the slice of the pool manager the match handler uses.
type MatchSubmitter interface {
	Submit(ctx context.Context, jobID string, k int) (*workers.RunOutcome, error)
}

// MatchHandler triggers a matching run for one job and returns the top-K
// match list.
func MatchHandler(cfg *config.Config, submitter MatchSubmitter) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.LogWithRequestID(requestID)

		var req models.MatchRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind match request", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "job_id is required"})
		}

		if req.JobID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "job_id is required"})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Warn("Match request validation failed", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "job_id must be a valid UUID"})
		}

		logger.Info("Match request received", map[string]interface{}{
			"job_id": req.JobID,
			"k":      req.K,
		})

		outcome, err := submitter.Submit(c.Request().Context(), req.JobID, req.K)
		if err != nil {
			if errors.Is(err, workers.ErrRateLimited) {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many matching runs for this job"})
			}
			logger.Error("Failed to submit matching run", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		}

		if outcome.Err != nil {
			var matchErr *utils.MatchError
			if errors.As(outcome.Err, &matchErr) {
				if matchErr.Code >= http.StatusInternalServerError {
					logger.Error("Matching run failed", map[string]interface{}{"error": outcome.Err.Error()})
				}
				return c.JSON(matchErr.Code, models.ErrorResponse{Error: matchErr.Message})
			}
			logger.Error("Matching run failed", map[string]interface{}{"error": outcome.Err.Error()})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		}

		logger.Info("Match request completed", map[string]interface{}{
			"job_id":           req.JobID,
			"returned":         outcome.Response.Returned,
			"total_candidates": outcome.Response.TotalCandidates,
			"processing_time":  utils.FormatDuration(outcome.Duration),
		})

		return c.JSON(http.StatusOK, outcome.Response)
	}
}

// LastRunHandler returns the most recent run summary for a job from the run
// cache. Purely operational; a missing summary is a 404, a cache outage a
// 503.
func LastRunHandler(runCache *store.RunCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")

		if runCache == nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Run cache is not configured"})
		}

		summary, err := runCache.GetRunSummary(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNoRunSummary) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No matching run recorded for this job"})
			}
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Run cache unavailable"})
		}

		return c.JSON(http.StatusOK, summary)
	}
}
