package model

const (
	TierHigh   = "High"
	TierMedium = "Medium"
	TierLow    = "Low"
)

// ScoringWeights holds the five weighting components. Explicitly supplied
// weights must be non-negative and sum to 100.
type ScoringWeights struct {
	OpenToWork        float64 `json:"open_to_work"`
	SkillMatch        float64 `json:"skill_match"`
	JobStability      float64 `json:"job_stability"`
	Engagement        float64 `json:"engagement"`
	CompanyDifference float64 `json:"company_difference"`
}

func (w ScoringWeights) Sum() float64 {
	return w.OpenToWork + w.SkillMatch + w.JobStability + w.Engagement + w.CompanyDifference
}

// DefaultScoringWeights is the system-wide profile used when a tenant has no
// weights configured.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		OpenToWork:        25,
		SkillMatch:        30,
		JobStability:      20,
		Engagement:        15,
		CompanyDifference: 10,
	}
}

type HireabilityAssessment struct {
	Score           float64  `json:"score"`
	PotentialToJoin string   `json:"potential_to_join"`
	Factors         []string `json:"factors"`
}

type ScoringResult struct {
	OpenToWork        float64               `json:"open_to_work"`
	SkillMatch        float64               `json:"skill_match"`
	JobStability      float64               `json:"job_stability"`
	Engagement        float64               `json:"engagement"`
	CompanyDifference float64               `json:"company_difference"`
	Overall           float64               `json:"overall"`
	PriorityTier      string                `json:"priority_tier"`
	Hireability       HireabilityAssessment `json:"hireability"`
}

// AnalysisResult is the opaque output of the external analysis provider.
type AnalysisResult struct {
	SkillMatch float64 `json:"skill_match"`
	Insights   string  `json:"insights"`
}

// FieldChange is one change-log entry produced by a merge. Observability
// only, never used for control flow.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}
