package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(model.DefaultScoringWeights()))
	assert.NoError(t, ValidateWeights(model.ScoringWeights{
		OpenToWork: 50, SkillMatch: 50,
	}))

	err := ValidateWeights(model.ScoringWeights{
		OpenToWork: 25, SkillMatch: 30, JobStability: 20, Engagement: 15, CompanyDifference: 5,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = ValidateWeights(model.ScoringWeights{OpenToWork: 120, SkillMatch: -20})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestScoreRejectsInvalidWeights(t *testing.T) {
	_, err := Score(Input{
		Record:  &model.StoredCandidate{Name: "A"},
		Weights: model.ScoringWeights{OpenToWork: 10},
		AsOf:    asOf,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestScoreDeterministic(t *testing.T) {
	lastActive := asOf.AddDate(0, 0, -10)
	in := Input{
		Record: &model.StoredCandidate{
			Name:     "A Smith",
			Email:    "a@x.com",
			Company:  "Acme",
			Skills:   []string{"Go", "Postgres"},
			Summary:  "Backend engineer",
			Location: "Berlin",
			Experience: []model.ExperienceEntry{
				{Company: "Acme", Title: "Engineer", Industry: "Software", StartDate: "2021-03"},
				{Company: "Initech", Title: "Engineer", Industry: "Software", StartDate: "2017-01", EndDate: "2021-02"},
			},
			ConnectionsCount: 400,
		},
		Enriched: &model.EnrichedProfile{
			CurrentCompany: "Acme",
			OpenToWork:     true,
			LastActiveAt:   &lastActive,
		},
		Analysis:         &model.AnalysisResult{SkillMatch: 7.5},
		SubmittedCompany: "Acme",
		Weights:          model.DefaultScoringWeights(),
		AsOf:             asOf,
	}

	first, err := Score(in)
	require.NoError(t, err)
	second, err := Score(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreOpenToWorkComponent(t *testing.T) {
	rec := &model.StoredCandidate{Name: "A"}

	t.Run("explicit flag scores full", func(t *testing.T) {
		assert.Equal(t, 10.0, openToWorkScore(rec, &model.EnrichedProfile{OpenToWork: true}))
	})

	t.Run("availability phrase scores partial", func(t *testing.T) {
		withPhrase := &model.StoredCandidate{Name: "A", Summary: "Open to opportunities in backend"}
		assert.Equal(t, float64(availabilitySignalScore), openToWorkScore(withPhrase, nil))
	})

	t.Run("no signal scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, openToWorkScore(rec, nil))
	})
}

func TestScoreCompanyDifference(t *testing.T) {
	assert.Equal(t, 0.0, companyDifferenceScore("Acme", &model.EnrichedProfile{CurrentCompany: "Acme"}))
	assert.Equal(t, 0.0, companyDifferenceScore("Acme", &model.EnrichedProfile{CurrentCompany: " acme "}))
	assert.Equal(t, 10.0, companyDifferenceScore("Acme", &model.EnrichedProfile{CurrentCompany: "Globex"}))
	assert.Equal(t, 0.0, companyDifferenceScore("Acme", nil))
	assert.Equal(t, 0.0, companyDifferenceScore("", &model.EnrichedProfile{CurrentCompany: "Globex"}))
}

// Submission for A. Smith at Acme; enrichment reports Acme and open to work.
func TestScoreExampleScenario(t *testing.T) {
	result, err := Score(Input{
		Record: &model.StoredCandidate{
			Name:    "A. Smith",
			Email:   "a.smith@x.com",
			Company: "Acme",
			Skills:  []string{"Go"},
		},
		Enriched: &model.EnrichedProfile{
			CurrentCompany: "Acme",
			OpenToWork:     true,
		},
		SubmittedCompany: "Acme",
		Weights:          model.DefaultScoringWeights(),
		AsOf:             asOf,
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, result.OpenToWork)
	assert.Equal(t, 0.0, result.CompanyDifference)
	assert.Contains(t, result.Hireability.Factors, "open to work")
	assert.Contains(t, result.Hireability.Factors, "skills available")
	assert.NotContains(t, result.Hireability.Factors, "company changed since submission")
}

func TestScoreTiers(t *testing.T) {
	assert.Equal(t, model.TierHigh, priorityTier(70))
	assert.Equal(t, model.TierMedium, priorityTier(69.9))
	assert.Equal(t, model.TierMedium, priorityTier(40))
	assert.Equal(t, model.TierLow, priorityTier(39.9))
}

func TestHireabilityFormula(t *testing.T) {
	lastActive := asOf.AddDate(0, 0, -5)
	in := Input{
		Record: &model.StoredCandidate{
			Name:         "A",
			Skills:       []string{"Go"},
			LastActiveAt: &lastActive,
		},
		Enriched: &model.EnrichedProfile{
			CurrentCompany: "Globex",
			OpenToWork:     true,
		},
		SubmittedCompany: "Acme",
		AsOf:             asOf,
	}

	h := hireability(50, in)
	// 50*0.4 + 20 (company changed) + 20 (open to work) + 10 (recent) + 10 (skills).
	assert.Equal(t, 80.0, h.Score)
	assert.Equal(t, model.TierHigh, h.PotentialToJoin)
	assert.ElementsMatch(t, []string{
		"company changed since submission",
		"open to work",
		"recently active",
		"skills available",
	}, h.Factors)

	none := hireability(0, Input{Record: &model.StoredCandidate{Name: "A"}, AsOf: asOf})
	assert.Equal(t, 0.0, none.Score)
	assert.Equal(t, model.TierLow, none.PotentialToJoin)
	assert.Empty(t, none.Factors)
}

func TestStabilityScore(t *testing.T) {
	t.Run("no history scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, stabilityScore(nil, asOf))
	})

	t.Run("single long current role scores high", func(t *testing.T) {
		history := []model.ExperienceEntry{
			{Company: "Acme", Title: "Engineer", Industry: "Software", StartDate: "2019-06"},
		}
		score := stabilityScore(history, asOf)
		assert.Greater(t, score, 9.0)
	})

	t.Run("frequent changes score lower than steady history", func(t *testing.T) {
		hopper := []model.ExperienceEntry{
			{Company: "A", StartDate: "2025-06", Industry: "Software"},
			{Company: "B", StartDate: "2024-09", EndDate: "2025-05", Industry: "Finance"},
			{Company: "C", StartDate: "2023-10", EndDate: "2024-08", Industry: "Retail"},
			{Company: "D", StartDate: "2022-11", EndDate: "2023-09", Industry: "Media"},
		}
		steady := []model.ExperienceEntry{
			{Company: "A", StartDate: "2021-01", Industry: "Software"},
			{Company: "B", StartDate: "2016-01", EndDate: "2020-12", Industry: "Software"},
		}
		assert.Less(t, stabilityScore(hopper, asOf), stabilityScore(steady, asOf))
	})

	t.Run("unparseable entries are skipped", func(t *testing.T) {
		history := []model.ExperienceEntry{
			{Company: "Acme", StartDate: "not-a-date"},
			{Company: "Acme", StartDate: "2020-01"},
		}
		assert.Greater(t, stabilityScore(history, asOf), 0.0)
	})
}

func TestGapScore(t *testing.T) {
	noGap := parseTenures([]model.ExperienceEntry{
		{Company: "A", StartDate: "2023-01"},
		{Company: "B", StartDate: "2020-01", EndDate: "2022-12"},
	}, asOf)
	assert.Equal(t, 10.0, gapScore(noGap))

	withGap := parseTenures([]model.ExperienceEntry{
		{Company: "A", StartDate: "2024-01"},
		{Company: "B", StartDate: "2020-01", EndDate: "2022-12"},
	}, asOf)
	assert.Equal(t, 7.0, gapScore(withGap))
}

func TestIndustryContinuity(t *testing.T) {
	one := parseTenures([]model.ExperienceEntry{
		{Company: "A", StartDate: "2023-01", Industry: "Software"},
		{Company: "B", StartDate: "2020-01", EndDate: "2022-12", Industry: "software"},
	}, asOf)
	assert.Equal(t, 10.0, industryContinuityScore(one))

	unknown := parseTenures([]model.ExperienceEntry{
		{Company: "A", StartDate: "2023-01"},
	}, asOf)
	assert.Equal(t, 5.0, industryContinuityScore(unknown))

	two := parseTenures([]model.ExperienceEntry{
		{Company: "A", StartDate: "2023-01", Industry: "Software"},
		{Company: "B", StartDate: "2020-01", EndDate: "2022-12", Industry: "Finance"},
	}, asOf)
	assert.Equal(t, 5.0, industryContinuityScore(two))
}
