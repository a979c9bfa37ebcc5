package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

// Priority tier thresholds over the 0-100 overall score. Fixed constants,
// not tenant-configurable.
const (
	priorityHighThreshold   = 70
	priorityMediumThreshold = 40

	joinHighThreshold   = 70
	joinMediumThreshold = 50
)

// availabilitySignals are free-text phrases that read as availability when
// the enriched profile carries no explicit open-to-work flag.
var availabilitySignals = []string{
	"open to work",
	"open to opportunities",
	"looking for",
	"seeking new",
	"available for",
	"actively searching",
}

const availabilitySignalScore = 6

// Input bundles everything a scoring pass depends on. SubmittedCompany is
// the company as stored or submitted before the merge, since the merged
// record's company already reflects the enriched profile.
type Input struct {
	Record           *model.StoredCandidate
	Enriched         *model.EnrichedProfile
	Analysis         *model.AnalysisResult
	SubmittedCompany string
	Weights          model.ScoringWeights
	AsOf             time.Time
}

// ValidateWeights rejects explicitly supplied weights that are negative or
// do not sum to 100. Must be called before any scoring happens.
func ValidateWeights(w model.ScoringWeights) error {
	for _, v := range []float64{w.OpenToWork, w.SkillMatch, w.JobStability, w.Engagement, w.CompanyDifference} {
		if v < 0 {
			return apperr.Validation("scoring weights must be non-negative")
		}
	}
	if math.Abs(w.Sum()-100) > 1e-9 {
		return apperr.Validation("scoring weights must sum to 100, got %g", w.Sum())
	}
	return nil
}

// Score computes the five sub-scores, the weighted overall score, the
// priority tier and the hireability assessment. Deterministic for fixed
// inputs: no wall-clock reads, AsOf is supplied by the caller.
func Score(in Input) (model.ScoringResult, error) {
	if err := ValidateWeights(in.Weights); err != nil {
		return model.ScoringResult{}, err
	}
	if in.Record == nil {
		return model.ScoringResult{}, apperr.Validation("record is required for scoring")
	}

	openToWork := openToWorkScore(in.Record, in.Enriched)
	skillMatch := skillMatchScore(in.Analysis)
	stability := stabilityScore(in.Record.Experience, in.AsOf)
	engagement := engagementScore(in.Record, in.Enriched, in.AsOf)
	companyDiff := companyDifferenceScore(in.SubmittedCompany, in.Enriched)

	// Sub-scores are on a 0-10 scale; weighting them against weights that
	// sum to 100 puts the overall score on 0-100.
	w := in.Weights
	overall := (openToWork*w.OpenToWork +
		skillMatch*w.SkillMatch +
		stability*w.JobStability +
		engagement*w.Engagement +
		companyDiff*w.CompanyDifference) / 10

	result := model.ScoringResult{
		OpenToWork:        round2(openToWork),
		SkillMatch:        round2(skillMatch),
		JobStability:      round2(stability),
		Engagement:        round2(engagement),
		CompanyDifference: round2(companyDiff),
		Overall:           round2(overall),
		PriorityTier:      priorityTier(overall),
	}
	result.Hireability = hireability(result.Overall, in)

	return result, nil
}

func priorityTier(overall float64) string {
	switch {
	case overall >= priorityHighThreshold:
		return model.TierHigh
	case overall >= priorityMediumThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// hireability is a second formula, distinct from the overall score: it
// estimates how likely the candidate is to accept an offer.
func hireability(overall float64, in Input) model.HireabilityAssessment {
	var factors []string

	companyBonus := 0.0
	if companyDifferenceScore(in.SubmittedCompany, in.Enriched) > 0 {
		companyBonus = 1
		factors = append(factors, "company changed since submission")
	}

	openBonus := 0.0
	if in.Enriched != nil && in.Enriched.OpenToWork {
		openBonus = 1
		factors = append(factors, "open to work")
	}

	activityBonus := 0.0
	if lastActive := lastActiveAt(in.Record, in.Enriched); lastActive != nil {
		if in.AsOf.Sub(*lastActive) <= 30*24*time.Hour {
			activityBonus = 1
			factors = append(factors, "recently active")
		}
	}

	skillsBonus := 0.0
	if len(in.Record.Skills) > 0 {
		skillsBonus = 1
		factors = append(factors, "skills available")
	}

	score := overall*0.4 + companyBonus*20 + openBonus*20 + activityBonus*10 + skillsBonus*10
	score = clamp(score, 0, 100)

	tier := model.TierLow
	switch {
	case score >= joinHighThreshold:
		tier = model.TierHigh
	case score >= joinMediumThreshold:
		tier = model.TierMedium
	}

	return model.HireabilityAssessment{
		Score:           round2(score),
		PotentialToJoin: tier,
		Factors:         factors,
	}
}

// openToWorkScore is 10 for an explicit open-to-work flag, a smaller fixed
// value for availability phrases in the summary or headline, else 0.
func openToWorkScore(rec *model.StoredCandidate, enriched *model.EnrichedProfile) float64 {
	if enriched != nil && enriched.OpenToWork {
		return 10
	}
	text := strings.ToLower(rec.Summary)
	if enriched != nil {
		text += " " + strings.ToLower(enriched.Summary+" "+enriched.Headline)
	}
	for _, signal := range availabilitySignals {
		if strings.Contains(text, signal) {
			return availabilitySignalScore
		}
	}
	return 0
}

// skillMatchScore passes through the analysis provider's opaque number,
// clamped onto the component scale.
func skillMatchScore(analysis *model.AnalysisResult) float64 {
	if analysis == nil {
		return 0
	}
	return clamp(analysis.SkillMatch, 0, 10)
}

func companyDifferenceScore(submittedCompany string, enriched *model.EnrichedProfile) float64 {
	if enriched == nil || enriched.CurrentCompany == "" || submittedCompany == "" {
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(submittedCompany), strings.TrimSpace(enriched.CurrentCompany)) {
		return 0
	}
	// Candidate moved on, or the resume is stale. Either way a positive
	// outreach signal, so it scores as a bonus, never a penalty.
	return 10
}

// engagementScore combines last-active recency, connection count and
// profile completeness at 40/30/30.
func engagementScore(rec *model.StoredCandidate, enriched *model.EnrichedProfile, asOf time.Time) float64 {
	recency := 0.0
	if lastActive := lastActiveAt(rec, enriched); lastActive != nil {
		days := asOf.Sub(*lastActive).Hours() / 24
		switch {
		case days <= 7:
			recency = 10
		case days <= 30:
			recency = 8
		case days <= 90:
			recency = 6
		case days <= 180:
			recency = 4
		case days <= 365:
			recency = 2
		}
	}

	connections := 0.0
	count := rec.ConnectionsCount
	if enriched != nil && enriched.ConnectionsCount > count {
		count = enriched.ConnectionsCount
	}
	if count > 0 {
		connections = clamp(float64(count)/50, 0, 10)
	}

	completeness := completenessScore(rec)

	return (recency*40 + connections*30 + completeness*30) / 100
}

func completenessScore(rec *model.StoredCandidate) float64 {
	fields := []bool{
		rec.Name != "",
		rec.Email != "",
		rec.Company != "",
		rec.Title != "",
		rec.Location != "",
		rec.ProfileHandle != "",
		rec.Summary != "",
		len(rec.Skills) > 0,
		len(rec.Experience) > 0,
		len(rec.Education) > 0,
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return float64(filled) * 10 / float64(len(fields))
}

func lastActiveAt(rec *model.StoredCandidate, enriched *model.EnrichedProfile) *time.Time {
	if enriched != nil && enriched.LastActiveAt != nil {
		return enriched.LastActiveAt
	}
	return rec.LastActiveAt
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
