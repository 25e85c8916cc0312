package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azubimatch/internal/config"
	"azubimatch/internal/store"
	"azubimatch/pkg/models"
	"azubimatch/pkg/utils"
)

// fakeStore is an in-memory Store with per-method error injection.
type fakeStore struct {
	job        *models.Job
	jobErr     error
	candidates []models.Candidate
	poolErr    error
	matched    map[string]struct{}
	matchedErr error
	feedback   map[string]struct{}
	fbErr      error

	upserted  []models.MatchResult
	upsertErr error
}

func (f *fakeStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *fakeStore) ListAvailableCandidates(ctx context.Context, limit int) ([]models.Candidate, error) {
	if f.poolErr != nil {
		return nil, f.poolErr
	}
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeStore) ListMatchedCandidateIDs(ctx context.Context, jobID string) (map[string]struct{}, error) {
	if f.matchedErr != nil {
		return nil, f.matchedErr
	}
	return f.matched, nil
}

func (f *fakeStore) ListFeedbackExclusions(ctx context.Context, jobID string) (map[string]struct{}, error) {
	if f.fbErr != nil {
		return nil, f.fbErr
	}
	return f.feedback, nil
}

func (f *fakeStore) UpsertMatches(ctx context.Context, matches []models.MatchResult) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append([]models.MatchResult(nil), matches...)
	return nil
}

type fakeRecorder struct {
	summaries []models.RunSummary
	err       error
}

func (f *fakeRecorder) StoreRunSummary(ctx context.Context, summary models.RunSummary) error {
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, summary)
	return nil
}

func testConfig() *config.Config {
	cfg, _ := config.LoadConfig("")
	return cfg
}

func remoteJob() *models.Job {
	return &models.Job{ID: "job-1", IsRemote: true, ContractType: models.ContractTypeApprentice}
}

func scoredCandidate(id string, completeness float64) models.Candidate {
	c := availableCandidate(id)
	c.ProfileCompleteness = floatPtr(completeness)
	return c
}

func TestEngineRun_JobNotFound(t *testing.T) {
	st := &fakeStore{jobErr: store.ErrJobNotFound}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "missing", 10)
	require.Nil(t, resp)

	var matchErr *utils.MatchError
	require.ErrorAs(t, err, &matchErr)
	assert.Equal(t, 404, matchErr.Code)
	assert.Equal(t, "Job not found", matchErr.Message)
}

func TestEngineRun_CandidateFetchFailure(t *testing.T) {
	st := &fakeStore{job: remoteJob(), poolErr: errors.New("connection refused")}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 10)
	require.Nil(t, resp)

	var matchErr *utils.MatchError
	require.ErrorAs(t, err, &matchErr)
	assert.Equal(t, 500, matchErr.Code)
	assert.Equal(t, "Failed to fetch candidates", matchErr.Message)
}

func TestEngineRun_ReturnsRankedMatches(t *testing.T) {
	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("c1", 1.0),
			scoredCandidate("c2", 0.7),
		},
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 2)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalCandidates)
	assert.Equal(t, len(resp.Matches), resp.Returned)
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "c1", resp.Matches[0].CandidateID)
	assert.Equal(t, "job-1", resp.Matches[0].JobID)
}

func TestEngineRun_ExcludesFeedbackAndPriorMatches(t *testing.T) {
	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("rejected", 1.0),
			scoredCandidate("cached", 1.0),
			scoredCandidate("fresh", 0.9),
		},
		matched:  map[string]struct{}{"cached": {}},
		feedback: map[string]struct{}{"rejected": {}},
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 10)
	require.NoError(t, err)

	for _, m := range resp.Matches {
		assert.NotEqual(t, "rejected", m.CandidateID)
		assert.NotEqual(t, "cached", m.CandidateID)
	}
}

func TestEngineRun_DropsBelowScoreThreshold(t *testing.T) {
	// On-site job, not relocating, no embeddings, available now:
	// 0.25c + 0.15 + 0.14 + 0.15 + 0.10 = 0.54 + 0.25c only clears 0.4 via c.
	job := &models.Job{ID: "job-1", ContractType: models.ContractTypeApprentice}
	weak := scoredCandidate("weak", 0.5)
	weak.AvailableFrom = timePtr(time.Now().AddDate(1, 0, 0))

	st := &fakeStore{job: job, candidates: []models.Candidate{weak}}

	cfg := testConfig()
	cfg.Matching.MinScore = 0.7
	engine := NewEngine(cfg, st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 10)
	require.NoError(t, err)

	// The weak candidate misses the retain bar but stays reachable through
	// the exploration slot, which is exempt from the threshold.
	for _, m := range resp.Matches {
		assert.True(t, m.Explanation.Explore)
	}
}

func TestEngineRun_NoDuplicateCandidates(t *testing.T) {
	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("c1", 1.0),
			scoredCandidate("c2", 0.8),
			scoredCandidate("c3", 0.6),
		},
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 10)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, m := range resp.Matches {
		_, dup := seen[m.CandidateID]
		assert.False(t, dup, "candidate %s returned twice", m.CandidateID)
		seen[m.CandidateID] = struct{}{}
	}
}

func TestEngineRun_ReturnedNeverExceedsBounds(t *testing.T) {
	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("c1", 1.0),
			scoredCandidate("c2", 0.8),
			scoredCandidate("c3", 0.6),
		},
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, resp.Returned, 1)
	assert.LessOrEqual(t, resp.Returned, resp.TotalCandidates)
}

func TestEngineRun_KDefaultAndCap(t *testing.T) {
	cfg := testConfig()
	cfg.Matching.DefaultK = 1
	cfg.Matching.MaxK = 1

	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("c1", 1.0),
			scoredCandidate("c2", 0.8),
		},
	}
	engine := NewEngine(cfg, st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Returned)

	resp, err = engine.Run(context.Background(), "job-1", 99)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Returned)
}

func TestEngineRun_SoftFeedbackReadFailure(t *testing.T) {
	st := &fakeStore{
		job:        remoteJob(),
		candidates: []models.Candidate{scoredCandidate("c1", 1.0)},
		matchedErr: errors.New("cache read timeout"),
		fbErr:      errors.New("feedback read timeout"),
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 5)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "c1", resp.Matches[0].CandidateID)
}

func TestEngineRun_UpsertFailureStillReturns(t *testing.T) {
	st := &fakeStore{
		job:        remoteJob(),
		candidates: []models.Candidate{scoredCandidate("c1", 1.0)},
		upsertErr:  errors.New("write conflict"),
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 5)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Matches)
}

func TestEngineRun_PersistsFinalList(t *testing.T) {
	st := &fakeStore{
		job:        remoteJob(),
		candidates: []models.Candidate{scoredCandidate("c1", 1.0)},
	}
	engine := NewEngine(testConfig(), st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 5)
	require.NoError(t, err)
	assert.Equal(t, resp.Matches, st.upserted)
}

func TestEngineRun_RecordsRunSummary(t *testing.T) {
	st := &fakeStore{
		job:        remoteJob(),
		candidates: []models.Candidate{scoredCandidate("c1", 1.0)},
	}
	recorder := &fakeRecorder{}
	engine := NewEngine(testConfig(), st, recorder)

	resp, err := engine.Run(context.Background(), "job-1", 5)
	require.NoError(t, err)

	require.Len(t, recorder.summaries, 1)
	summary := recorder.summaries[0]
	assert.Equal(t, "job-1", summary.JobID)
	assert.Equal(t, resp.TotalCandidates, summary.TotalCandidates)
	assert.Equal(t, resp.Returned, summary.Returned)
	assert.NotEmpty(t, summary.RunID)
}

func TestEngineRun_RecorderFailureIsSoft(t *testing.T) {
	st := &fakeStore{
		job:        remoteJob(),
		candidates: []models.Candidate{scoredCandidate("c1", 1.0)},
	}
	engine := NewEngine(testConfig(), st, &fakeRecorder{err: errors.New("redis down")})

	resp, err := engine.Run(context.Background(), "job-1", 5)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestEngineRun_PoolBoundedByMaxPoolSize(t *testing.T) {
	cfg := testConfig()
	cfg.Matching.MaxPoolSize = 2

	st := &fakeStore{
		job: remoteJob(),
		candidates: []models.Candidate{
			scoredCandidate("c1", 1.0),
			scoredCandidate("c2", 0.9),
			scoredCandidate("c3", 0.8),
		},
	}
	engine := NewEngine(cfg, st, nil)

	resp, err := engine.Run(context.Background(), "job-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCandidates)
}
