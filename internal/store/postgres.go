package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"azubimatch/pkg/models"
)

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a pgx pool, registers the pgvector type and
// verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Ping verifies the database connection is still alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// GetJob fetches a single job by ID.
func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var (
		j   models.Job
		emb *pgvector.Vector
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, title, COALESCE(description, ''),
		        COALESCE(track, ''), COALESCE(contract_type, ''),
		        is_remote, salary_min, salary_max,
		        COALESCE(min_experience_months, 0),
		        COALESCE(benefits, '{}'), embedding, created_at
		 FROM jobs
		 WHERE id = $1`,
		jobID,
	).Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.Description,
		&j.Track, &j.ContractType,
		&j.IsRemote, &j.SalaryMin, &j.SalaryMax,
		&j.MinExperienceMonths,
		&j.Benefits, &emb, &j.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getJob query: %w", err)
	}

	if emb != nil {
		j.Embedding = emb.Slice()
	}
	return &j, nil
}

// ListAvailableCandidates fetches the matchable candidate pool. The stage
// and completeness filters are pushed into SQL so ineligible profiles never
// leave the database.
func (s *PostgresStore) ListAvailableCandidates(ctx context.Context, limit int) ([]models.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''),
		        stage, COALESCE(bio, ''), available_from,
		        profile_completeness, embedding,
		        home_lat, home_lon,
		        COALESCE(commute_mode, ''), COALESCE(commute_max_minutes, 0),
		        COALESCE(willing_to_relocate, false)
		 FROM candidates
		 WHERE stage = $1 AND profile_completeness >= 0.5
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		models.CandidateStageAvailable, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listAvailableCandidates query: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		var (
			c   models.Candidate
			emb *pgvector.Vector
		)
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName,
			&c.Stage, &c.Bio, &c.AvailableFrom,
			&c.ProfileCompleteness, &emb,
			&c.HomeLat, &c.HomeLon,
			&c.CommuteMode, &c.CommuteMaxMinutes,
			&c.WillingToRelocate,
		); err != nil {
			return nil, fmt.Errorf("listAvailableCandidates scan: %w", err)
		}
		if emb != nil {
			c.Embedding = emb.Slice()
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ListMatchedCandidateIDs returns candidate IDs already cached for the job.
func (s *PostgresStore) ListMatchedCandidateIDs(ctx context.Context, jobID string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id FROM match_cache WHERE job_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listMatchedCandidateIDs query: %w", err)
	}
	defer rows.Close()

	return scanIDSet(rows)
}

// ListFeedbackExclusions returns candidate IDs with terminal feedback for
// the job.
func (s *PostgresStore) ListFeedbackExclusions(ctx context.Context, jobID string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id FROM match_feedback
		 WHERE job_id = $1 AND feedback_type = ANY($2)`,
		jobID, []string{models.FeedbackRejected, models.FeedbackSuppressed})
	if err != nil {
		return nil, fmt.Errorf("listFeedbackExclusions query: %w", err)
	}
	defer rows.Close()

	return scanIDSet(rows)
}

// UpsertMatches writes the final list in a single batch, last writer wins.
func (s *PostgresStore) UpsertMatches(ctx context.Context, matches []models.MatchResult) error {
	if len(matches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range matches {
		explanation, err := json.Marshal(m.Explanation)
		if err != nil {
			return fmt.Errorf("marshal explanation for candidate %s: %w", m.CandidateID, err)
		}
		batch.Queue(
			`INSERT INTO match_cache (job_id, candidate_id, score, explanation, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (job_id, candidate_id)
			 DO UPDATE SET score = EXCLUDED.score,
			               explanation = EXCLUDED.explanation,
			               updated_at = now()`,
			m.JobID, m.CandidateID, m.Score, explanation,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range matches {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsertMatches exec: %w", err)
		}
	}
	return nil
}

func scanIDSet(rows pgx.Rows) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan candidate id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
