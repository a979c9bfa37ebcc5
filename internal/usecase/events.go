package usecase

import (
	"github.com/recruitdesk/candidate-intake/internal/model"
)

type EventType string

const (
	EventStart    EventType = "start"
	EventItem     EventType = "item"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// BatchCounts are the aggregate totals reported by the complete event. They
// are the single source of truth for how many items succeeded or failed.
type BatchCounts struct {
	Processed       int `json:"processed"`
	Successful      int `json:"successful"`
	Failed          int `json:"failed"`
	MatchedExisting int `json:"matched_existing"`
	NewlyCreated    int `json:"newly_created"`
}

// ItemError describes a per-item failure without leaking the error chain to
// stream consumers.
type ItemError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ItemResult is the payload of a successful (or partially successful) item.
// A persistence failure still carries the computed record here with
// SavedToDatabase=false so callers can recover it.
type ItemResult struct {
	Candidate       *model.StoredCandidate `json:"candidate,omitempty"`
	MatchedBy       model.MatchedBy        `json:"matched_by"`
	IsUpdate        bool                   `json:"is_update"`
	Scored          bool                   `json:"scored"`
	Scoring         *model.ScoringResult   `json:"scoring,omitempty"`
	Insights        string                 `json:"insights,omitempty"`
	Changes         []model.FieldChange    `json:"changes,omitempty"`
	SavedToDatabase bool                   `json:"saved_to_database"`
}

// BatchEvent is one record of the streaming batch protocol: exactly one
// start first, item events in input order with a 1-based strictly
// increasing index, and exactly one complete or error last.
type BatchEvent struct {
	Type    EventType    `json:"type"`
	Total   int          `json:"total,omitempty"`
	Index   int          `json:"index,omitempty"`
	Success bool         `json:"success,omitempty"`
	Result  *ItemResult  `json:"result,omitempty"`
	Error   *ItemError   `json:"error,omitempty"`
	Counts  *BatchCounts `json:"counts,omitempty"`
}
