package matcher

import (
	"math"
	"math/rand"
	"sort"

	"azubimatch/pkg/models"
)

// Ranker selects the final top-K list: descending score order, a greedy
// diversity pass over score proximity, and at most one exploration slot.
type Ranker struct {
	lambda            float64
	admitThreshold    float64
	exploreMultiplier float64
	scorer            *Scorer
	rng               *rand.Rand
}

// NewRanker wires the diversity knobs and the RNG used for the exploration
// slot. Pass a seeded rand.Rand in tests for determinism.
func NewRanker(lambda, admitThreshold, exploreMultiplier float64, scorer *Scorer, rng *rand.Rand) *Ranker {
	return &Ranker{
		lambda:            lambda,
		admitThreshold:    admitThreshold,
		exploreMultiplier: exploreMultiplier,
		scorer:            scorer,
		rng:               rng,
	}
}

// Rank orders the retained results, diversifies, injects the exploration
// slot when the list comes up short, and truncates to k. The diversified
// entries keep their score order; the explore entry is always last.
func (r *Ranker) Rank(input *RunInput, retained []models.MatchResult, k int) []models.MatchResult {
	sorted := make([]models.MatchResult, len(retained))
	copy(sorted, retained)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	selected := r.diversify(sorted)

	if len(selected) < k {
		if explore := r.exploreCandidate(input, selected); explore != nil {
			selected = append(selected, *explore)
		}
	}

	if len(selected) > k {
		selected = selected[:k]
	}
	return selected
}

// diversify is a greedy Maximal-Marginal-Relevance pass using score
// proximity (1 - |scoreA - scoreB|) as the redundancy measure. The top
// result is always admitted; each later result must clear
// lambda*score - (1-lambda)*maxSimilarity > admitThreshold.
func (r *Ranker) diversify(sorted []models.MatchResult) []models.MatchResult {
	if len(sorted) == 0 {
		return nil
	}

	selected := []models.MatchResult{sorted[0]}
	for _, candidate := range sorted[1:] {
		maxSim := 0.0
		for _, s := range selected {
			sim := 1.0 - math.Abs(candidate.Score-s.Score)
			if sim > maxSim {
				maxSim = sim
			}
		}

		mmr := r.lambda*candidate.Score - (1.0-r.lambda)*maxSim
		if mmr > r.admitThreshold {
			selected = append(selected, candidate)
		}
	}
	return selected
}

// exploreCandidate picks one candidate uniformly at random from the loaded
// pool, skipping anyone already selected or excluded, and rescores them at
// a discount. Returns nil when no candidate remains — the slot is simply
// skipped, never an error.
func (r *Ranker) exploreCandidate(input *RunInput, selected []models.MatchResult) *models.MatchResult {
	taken := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		taken[s.CandidateID] = struct{}{}
	}

	pool := make([]models.Candidate, 0, len(input.Candidates))
	for _, c := range input.Candidates {
		if _, ok := taken[c.ID]; ok {
			continue
		}
		if _, ok := input.Excluded[c.ID]; ok {
			continue
		}
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		return nil
	}

	pick := pool[r.rng.Intn(len(pool))]
	score, expl := r.scorer.Score(input.Job, &pick)

	score *= r.exploreMultiplier
	expl.Overall = score
	expl.Explore = true

	return &models.MatchResult{
		JobID:       input.Job.ID,
		CandidateID: pick.ID,
		Score:       score,
		Explanation: expl,
	}
}
