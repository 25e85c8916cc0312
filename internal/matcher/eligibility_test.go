package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"azubimatch/pkg/models"
)

var noExclusions = map[string]struct{}{}

func availableCandidate(id string) models.Candidate {
	return models.Candidate{
		ID:                  id,
		Stage:               models.CandidateStageAvailable,
		ProfileCompleteness: floatPtr(0.9),
	}
}

func TestEligibility_PassesCompleteProfile(t *testing.T) {
	f := &EligibilityFilter{now: fixedClock(time.Now())}

	eligible := f.Apply(&models.Job{}, []models.Candidate{availableCandidate("c1")}, noExclusions)
	assert.Len(t, eligible, 1)
}

func TestEligibility_DropsExcludedIDs(t *testing.T) {
	f := &EligibilityFilter{now: fixedClock(time.Now())}

	pool := []models.Candidate{availableCandidate("c1"), availableCandidate("c2")}
	excluded := map[string]struct{}{"c1": {}}

	eligible := f.Apply(&models.Job{}, pool, excluded)
	assert.Len(t, eligible, 1)
	assert.Equal(t, "c2", eligible[0].ID)
}

func TestEligibility_DropsWrongStage(t *testing.T) {
	f := &EligibilityFilter{now: fixedClock(time.Now())}

	c := availableCandidate("c1")
	c.Stage = "placed"

	eligible := f.Apply(&models.Job{}, []models.Candidate{c}, noExclusions)
	assert.Empty(t, eligible)
}

func TestEligibility_DropsIncompleteProfile(t *testing.T) {
	f := &EligibilityFilter{now: fixedClock(time.Now())}

	c := availableCandidate("c1")
	c.ProfileCompleteness = floatPtr(0.3)

	eligible := f.Apply(&models.Job{}, []models.Candidate{c}, noExclusions)
	assert.Empty(t, eligible)
}

func TestEligibility_MissingCompletenessPassesFloor(t *testing.T) {
	f := &EligibilityFilter{now: fixedClock(time.Now())}

	c := availableCandidate("c1")
	c.ProfileCompleteness = nil // defaults to 0.5, exactly at the floor

	eligible := f.Apply(&models.Job{}, []models.Candidate{c}, noExclusions)
	assert.Len(t, eligible, 1)
}

func TestEligibility_FullTimeStartWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &EligibilityFilter{now: fixedClock(now)}

	fullTime := &models.Job{ContractType: models.ContractTypeFullTime}

	soon := availableCandidate("soon")
	soon.AvailableFrom = timePtr(now.AddDate(0, 2, 0))

	late := availableCandidate("late")
	late.AvailableFrom = timePtr(now.AddDate(0, 4, 0))

	undated := availableCandidate("undated")

	eligible := f.Apply(fullTime, []models.Candidate{soon, late, undated}, noExclusions)
	assert.Len(t, eligible, 2)
	assert.Equal(t, "soon", eligible[0].ID)
	assert.Equal(t, "undated", eligible[1].ID)
}

func TestEligibility_StartWindowOnlyGatesFullTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &EligibilityFilter{now: fixedClock(now)}

	apprentice := &models.Job{ContractType: models.ContractTypeApprentice}

	late := availableCandidate("late")
	late.AvailableFrom = timePtr(now.AddDate(0, 6, 0))

	eligible := f.Apply(apprentice, []models.Candidate{late}, noExclusions)
	assert.Len(t, eligible, 1)
}
