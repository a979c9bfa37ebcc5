package model

import "github.com/google/uuid"

// CandidateSubmission is one incoming record for a tenant, from a tabular
// upload or a direct API call. Immutable once received.
type CandidateSubmission struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Company        string            `json:"company"`
	Title          string            `json:"title"`
	Location       string            `json:"location"`
	ProfileHandle  string            `json:"profile_handle"`
	Summary        string            `json:"summary"`
	Skills         []string          `json:"skills"`
	Experience     []ExperienceEntry `json:"experience"`
	Education      []EducationEntry  `json:"education"`
	Certifications []string          `json:"certifications"`
}

type MatchedBy string

const (
	MatchedByEmailAndProfile MatchedBy = "email_and_profile"
	MatchedByEmail           MatchedBy = "email"
	MatchedByProfile         MatchedBy = "profile"
	MatchedByNone            MatchedBy = "none"
)

// MatchResult reports how a submission was matched against stored records.
// CandidateID is nil exactly when MatchedBy is MatchedByNone.
type MatchResult struct {
	CandidateID *uuid.UUID `json:"matched_candidate_id"`
	MatchedBy   MatchedBy  `json:"matched_by"`
}

func (m MatchResult) Matched() bool {
	return m.MatchedBy != MatchedByNone && m.CandidateID != nil
}
