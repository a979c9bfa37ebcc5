package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

// Store is the slice of candidate storage the resolver needs. Lookups
// return (nil, nil) when no record exists.
type Store interface {
	FindByEmailAndHandle(tenantID uuid.UUID, email, handle string) (*model.StoredCandidate, error)
	FindByEmail(tenantID uuid.UUID, email string) (*model.StoredCandidate, error)
	FindByHandle(tenantID uuid.UUID, handle string) (*model.StoredCandidate, error)
}

// Resolver decides whether a submission refers to a person the tenant
// already knows. Matching is exact on the normalized identity keys; name or
// company similarity never produces a match.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

func NewResolver(store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve evaluates the matching precedence in order, first hit wins:
// (email, profileHandle) both matching, then email alone, then profileHandle
// alone, then none.
func (r *Resolver) Resolve(tenantID uuid.UUID, sub model.CandidateSubmission) (model.MatchResult, error) {
	email := NormalizeEmail(sub.Email)
	handle := NormalizeHandle(sub.ProfileHandle)

	if email != "" && handle != "" {
		stored, err := r.store.FindByEmailAndHandle(tenantID, email, handle)
		if err != nil {
			return model.MatchResult{MatchedBy: model.MatchedByNone}, fmt.Errorf("find by email+handle: %w", err)
		}
		if stored != nil {
			return r.matched(stored, model.MatchedByEmailAndProfile), nil
		}
	}

	if email != "" {
		stored, err := r.store.FindByEmail(tenantID, email)
		if err != nil {
			return model.MatchResult{MatchedBy: model.MatchedByNone}, fmt.Errorf("find by email: %w", err)
		}
		if stored != nil {
			return r.matched(stored, model.MatchedByEmail), nil
		}
	}

	if handle != "" {
		stored, err := r.store.FindByHandle(tenantID, handle)
		if err != nil {
			return model.MatchResult{MatchedBy: model.MatchedByNone}, fmt.Errorf("find by handle: %w", err)
		}
		if stored != nil {
			return r.matched(stored, model.MatchedByProfile), nil
		}
	}

	return model.MatchResult{MatchedBy: model.MatchedByNone}, nil
}

func (r *Resolver) matched(stored *model.StoredCandidate, by model.MatchedBy) model.MatchResult {
	id := stored.ID
	r.logger.Debug("identity resolved",
		zap.String("candidate_id", id.String()),
		zap.String("matched_by", string(by)),
	)
	return model.MatchResult{CandidateID: &id, MatchedBy: by}
}

// NormalizeEmail lowercases and trims an email for identity comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeHandle trims a profile handle and strips a trailing slash so the
// same profile URL stored with and without one compares equal.
func NormalizeHandle(handle string) string {
	h := strings.TrimSpace(handle)
	return strings.TrimSuffix(h, "/")
}
