package dto

import (
	"github.com/google/uuid"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

// BatchRequest is the JSON body of a batch submission. Tabular uploads go
// through the multipart form instead and share the option fields as query
// parameters.
type BatchRequest struct {
	Submissions                 []model.CandidateSubmission `json:"submissions"`
	Weights                     *model.ScoringWeights       `json:"weights,omitempty"`
	ForceReenrich               bool                        `json:"force_reenrich"`
	RequireEnrichmentForScoring bool                        `json:"require_enrichment_for_scoring"`
	JobID                       *uuid.UUID                  `json:"job_id,omitempty"`
}

type SubmitCandidateRequest struct {
	Submission                  model.CandidateSubmission `json:"submission"`
	Weights                     *model.ScoringWeights     `json:"weights,omitempty"`
	ForceReenrich               bool                      `json:"force_reenrich"`
	RequireEnrichmentForScoring bool                      `json:"require_enrichment_for_scoring"`
	JobID                       *uuid.UUID                `json:"job_id,omitempty"`
}

type WeightsRequest struct {
	Weights model.ScoringWeights `json:"weights"`
}

type WeightsDTO struct {
	Weights  model.ScoringWeights `json:"weights"`
	Explicit bool                 `json:"explicit"`
}

type CreateJobRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
