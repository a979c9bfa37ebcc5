package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/identity"
	"github.com/recruitdesk/candidate-intake/internal/merge"
	"github.com/recruitdesk/candidate-intake/internal/model"
	"github.com/recruitdesk/candidate-intake/internal/scoring"
	"github.com/recruitdesk/candidate-intake/internal/service"
)

// CandidateStore is the candidate persistence surface the pipeline needs.
type CandidateStore interface {
	identity.Store
	FindByID(tenantID, id uuid.UUID) (*model.StoredCandidate, error)
	List(tenantID uuid.UUID, page, pageSize int) ([]model.StoredCandidate, int64, error)
	Upsert(record *model.StoredCandidate) (*model.StoredCandidate, error)
}

type JobStore interface {
	SearchJobs(tenantID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.Job, error)
	FindJobByID(tenantID, id uuid.UUID) (*model.Job, error)
	CreateJob(job *model.Job) error
}

type WeightsStore interface {
	Get(tenantID uuid.UUID) (*model.TenantWeights, error)
	Set(tenantID uuid.UUID, weights model.ScoringWeights) error
}

// BatchOptions tune a single batch run.
type BatchOptions struct {
	// ForceReenrich bypasses the matched-record fast path.
	ForceReenrich bool
	// RequireEnrichmentForScoring skips scoring when no profile was
	// obtained; the item is still processed and persisted without a score.
	RequireEnrichmentForScoring bool
	// JobID selects the job description for the skill-match analysis. When
	// unset, the most similar jobs are retrieved by embedding search.
	JobID *uuid.UUID
}

// IntakeUsecase drives resolve, enrich, merge, score, persist for single
// submissions and for ordered batches. Batch items are processed strictly
// sequentially; one bad record never aborts the batch.
type IntakeUsecase struct {
	candidates CandidateStore
	jobs       JobStore
	weights    WeightsStore
	resolver   *identity.Resolver
	enrichment service.EnrichmentServiceInterface
	analysis   service.AnalysisServiceInterface
	logger     *zap.Logger
	now        func() time.Time
}

func NewIntakeUsecase(
	candidates CandidateStore,
	jobs JobStore,
	weights WeightsStore,
	enrichment service.EnrichmentServiceInterface,
	analysis service.AnalysisServiceInterface,
	logger *zap.Logger,
) *IntakeUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeUsecase{
		candidates: candidates,
		jobs:       jobs,
		weights:    weights,
		resolver:   identity.NewResolver(candidates, logger),
		enrichment: enrichment,
		analysis:   analysis,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessBatch starts a batch run and returns the event stream. Explicit
// weights are validated up front; a bad set is rejected before the stream
// starts. The returned channel closes after the terminal event.
func (uc *IntakeUsecase) ProcessBatch(
	ctx context.Context,
	tenantID uuid.UUID,
	submissions []model.CandidateSubmission,
	explicitWeights *model.ScoringWeights,
	opts BatchOptions,
) (<-chan BatchEvent, error) {
	if explicitWeights != nil {
		if err := scoring.ValidateWeights(*explicitWeights); err != nil {
			return nil, err
		}
	}

	events := make(chan BatchEvent)
	go uc.runBatch(ctx, tenantID, submissions, explicitWeights, opts, events)
	return events, nil
}

func (uc *IntakeUsecase) runBatch(
	ctx context.Context,
	tenantID uuid.UUID,
	submissions []model.CandidateSubmission,
	explicitWeights *model.ScoringWeights,
	opts BatchOptions,
	events chan<- BatchEvent,
) {
	defer close(events)

	events <- BatchEvent{Type: EventStart, Total: len(submissions)}

	weights, err := uc.effectiveWeights(tenantID, explicitWeights)
	if err != nil {
		events <- errorEvent(err)
		return
	}

	jobDescription, err := uc.jobDescription(tenantID, opts)
	if err != nil {
		events <- errorEvent(err)
		return
	}

	counts := BatchCounts{}
	for i, submission := range submissions {
		// Cancellation takes effect between items only; an in-flight item
		// always runs to completion or failure.
		select {
		case <-ctx.Done():
			uc.logger.Info("batch canceled between items",
				zap.Int("processed", counts.Processed),
				zap.Int("total", len(submissions)),
			)
			events <- BatchEvent{Type: EventComplete, Counts: &counts}
			return
		default:
		}

		result, err := uc.processOne(ctx, tenantID, submission, weights, jobDescription, opts)
		counts.Processed++

		if err != nil {
			counts.Failed++
			uc.logger.Warn("batch item failed",
				zap.Int("index", i+1),
				zap.String("kind", string(apperr.KindOf(err))),
				zap.Error(err),
			)
			if apperr.IsKind(err, apperr.KindUnauthorized) {
				uc.logger.Error("provider credentials rejected; subsequent items will likely fail the same way")
			}
			events <- BatchEvent{
				Type:    EventItem,
				Index:   i + 1,
				Success: false,
				Result:  result,
				Error:   &ItemError{Kind: string(apperr.KindOf(err)), Message: err.Error()},
			}
			continue
		}

		counts.Successful++
		if result.IsUpdate {
			counts.MatchedExisting++
		} else {
			counts.NewlyCreated++
		}
		events <- BatchEvent{Type: EventItem, Index: i + 1, Success: true, Result: result}
	}

	events <- BatchEvent{Type: EventComplete, Counts: &counts}
}

// SubmitOne runs the per-item pipeline for a single direct submission.
func (uc *IntakeUsecase) SubmitOne(
	ctx context.Context,
	tenantID uuid.UUID,
	submission model.CandidateSubmission,
	explicitWeights *model.ScoringWeights,
	opts BatchOptions,
) (*ItemResult, error) {
	if explicitWeights != nil {
		if err := scoring.ValidateWeights(*explicitWeights); err != nil {
			return nil, err
		}
	}
	weights, err := uc.effectiveWeights(tenantID, explicitWeights)
	if err != nil {
		return nil, err
	}
	jobDescription, err := uc.jobDescription(tenantID, opts)
	if err != nil {
		return nil, err
	}
	return uc.processOne(ctx, tenantID, submission, weights, jobDescription, opts)
}

// processOne is the per-item pipeline: resolve, enrich, merge, score,
// persist. Every returned error carries a taxonomy kind; a persistence
// failure additionally returns the computed result for caller recovery.
func (uc *IntakeUsecase) processOne(
	ctx context.Context,
	tenantID uuid.UUID,
	submission model.CandidateSubmission,
	weights model.ScoringWeights,
	jobDescription string,
	opts BatchOptions,
) (*ItemResult, error) {
	if strings.TrimSpace(submission.Name) == "" {
		return nil, apperr.Validation("submission name is required")
	}

	match, err := uc.resolver.Resolve(tenantID, submission)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "identity lookup failed", err)
	}

	var existing *model.StoredCandidate
	if match.Matched() {
		existing, err = uc.candidates.FindByID(tenantID, *match.CandidateID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "load matched candidate failed", err)
		}
		if existing != nil && !opts.ForceReenrich {
			// Fast path: known person, no re-enrichment requested. Return
			// the stored record as-is without external calls.
			return &ItemResult{
				Candidate:       existing,
				MatchedBy:       match.MatchedBy,
				IsUpdate:        true,
				Scored:          existing.PriorityTier != "",
				SavedToDatabase: true,
			}, nil
		}
	}

	enriched, enrichmentAttempted, err := uc.enrich(ctx, submission, existing)
	if err != nil {
		return nil, err
	}

	record, changes := merge.Merge(merge.Input{
		TenantID:            tenantID,
		Existing:            existing,
		Submission:          submission,
		Enriched:            enriched,
		MatchedBy:           match.MatchedBy,
		EnrichmentAttempted: enrichmentAttempted,
		Now:                 uc.now(),
	})

	result := &ItemResult{
		MatchedBy: match.MatchedBy,
		IsUpdate:  existing != nil,
		Changes:   changes,
	}

	if enriched != nil || !opts.RequireEnrichmentForScoring {
		if err := uc.scoreRecord(ctx, record, enriched, submission, existing, weights, jobDescription, result); err != nil {
			return nil, err
		}
	}

	result.Candidate = record
	saved, err := uc.candidates.Upsert(record)
	if err != nil {
		result.SavedToDatabase = false
		return result, apperr.Wrap(apperr.KindPersistence, "persist candidate failed", err)
	}
	result.Candidate = saved
	result.SavedToDatabase = true
	return result, nil
}

// enrich calls the gateway. Not-found is a valid outcome and leaves the
// profile nil; every other failure fails the item.
func (uc *IntakeUsecase) enrich(
	ctx context.Context,
	submission model.CandidateSubmission,
	existing *model.StoredCandidate,
) (*model.EnrichedProfile, bool, error) {
	criteria := model.LookupCriteria{
		Name:          submission.Name,
		Company:       submission.Company,
		Title:         submission.Title,
		ProfileHandle: submission.ProfileHandle,
	}
	if criteria.ProfileHandle == "" && existing != nil {
		criteria.ProfileHandle = existing.ProfileHandle
	}

	profile, err := uc.enrichment.Lookup(ctx, criteria)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, true, nil
		}
		return nil, true, err
	}
	return profile, true, nil
}

func (uc *IntakeUsecase) scoreRecord(
	ctx context.Context,
	record *model.StoredCandidate,
	enriched *model.EnrichedProfile,
	submission model.CandidateSubmission,
	existing *model.StoredCandidate,
	weights model.ScoringWeights,
	jobDescription string,
	result *ItemResult,
) error {
	if jobDescription == "" {
		jobDescription = uc.retrieveJobContext(ctx, record)
	}

	analysis, err := uc.analysis.Analyze(ctx, record, jobDescription)
	if err != nil {
		return err
	}

	submittedCompany := submission.Company
	if submittedCompany == "" && existing != nil {
		submittedCompany = existing.Company
	}

	scored, err := scoring.Score(scoring.Input{
		Record:           record,
		Enriched:         enriched,
		Analysis:         analysis,
		SubmittedCompany: submittedCompany,
		Weights:          weights,
		AsOf:             uc.now(),
	})
	if err != nil {
		return err
	}

	record.Score = scored.Overall
	record.PriorityTier = scored.PriorityTier
	record.HireabilityScore = scored.Hireability.Score
	record.PotentialToJoin = scored.Hireability.PotentialToJoin

	result.Scored = true
	result.Scoring = &scored
	result.Insights = analysis.Insights
	return nil
}

// retrieveJobContext assembles a job-description context by embedding the
// candidate and pulling the nearest stored jobs. Advisory: any failure here
// just means scoring runs without a job description.
func (uc *IntakeUsecase) retrieveJobContext(ctx context.Context, record *model.StoredCandidate) string {
	text := strings.TrimSpace(record.Summary + " " + strings.Join(record.Skills, " "))
	if text == "" || uc.jobs == nil {
		return ""
	}

	embedding, err := uc.analysis.GenerateEmbedding(ctx, text)
	if err != nil {
		uc.logger.Debug("candidate embedding failed; scoring without job context", zap.Error(err))
		return ""
	}

	jobs, err := uc.jobs.SearchJobs(record.TenantID, pgvector.NewVector(embedding), 3)
	if err != nil {
		uc.logger.Debug("job similarity search failed; scoring without job context", zap.Error(err))
		return ""
	}

	var b strings.Builder
	for i, job := range jobs {
		fmt.Fprintf(&b, "Job %d: %s\n%s\n\n", i+1, job.Title, job.Content)
	}
	return b.String()
}

func (uc *IntakeUsecase) effectiveWeights(tenantID uuid.UUID, explicit *model.ScoringWeights) (model.ScoringWeights, error) {
	if explicit != nil {
		return *explicit, nil
	}
	stored, err := uc.weights.Get(tenantID)
	if err != nil {
		return model.ScoringWeights{}, apperr.Wrap(apperr.KindPersistence, "load tenant weights failed", err)
	}
	if stored == nil {
		return model.DefaultScoringWeights(), nil
	}
	return stored.Weights, nil
}

func (uc *IntakeUsecase) jobDescription(tenantID uuid.UUID, opts BatchOptions) (string, error) {
	if opts.JobID == nil {
		return "", nil
	}
	job, err := uc.jobs.FindJobByID(tenantID, *opts.JobID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindPersistence, "load job failed", err)
	}
	if job == nil {
		return "", apperr.New(apperr.KindNotFound, "job not found")
	}
	return job.Content, nil
}

// SetWeights stores a tenant's scoring weights after strict validation.
func (uc *IntakeUsecase) SetWeights(tenantID uuid.UUID, weights model.ScoringWeights) error {
	if err := scoring.ValidateWeights(weights); err != nil {
		return err
	}
	if err := uc.weights.Set(tenantID, weights); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "store tenant weights failed", err)
	}
	return nil
}

// GetWeights returns the tenant's effective weights and whether they were
// explicitly configured.
func (uc *IntakeUsecase) GetWeights(tenantID uuid.UUID) (model.ScoringWeights, bool, error) {
	stored, err := uc.weights.Get(tenantID)
	if err != nil {
		return model.ScoringWeights{}, false, apperr.Wrap(apperr.KindPersistence, "load tenant weights failed", err)
	}
	if stored == nil {
		return model.DefaultScoringWeights(), false, nil
	}
	return stored.Weights, true, nil
}

func (uc *IntakeUsecase) GetCandidate(tenantID, id uuid.UUID) (*model.StoredCandidate, error) {
	candidate, err := uc.candidates.FindByID(tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "load candidate failed", err)
	}
	if candidate == nil {
		return nil, apperr.New(apperr.KindNotFound, "candidate not found")
	}
	return candidate, nil
}

// ListCandidates clamps the paging inputs and returns the effective page and
// page size alongside the rows, so response metadata reflects what was
// actually queried.
func (uc *IntakeUsecase) ListCandidates(tenantID uuid.UUID, page, pageSize int) ([]model.StoredCandidate, int64, int, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	candidates, total, err := uc.candidates.List(tenantID, page, pageSize)
	if err != nil {
		return nil, 0, 0, 0, apperr.Wrap(apperr.KindPersistence, "list candidates failed", err)
	}
	return candidates, total, page, pageSize, nil
}

// CreateJob stores a job description with its embedding for similarity
// retrieval during scoring.
func (uc *IntakeUsecase) CreateJob(ctx context.Context, tenantID uuid.UUID, title, content string) (*model.Job, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("job title and content are required")
	}
	embedding, err := uc.analysis.GenerateEmbedding(ctx, content)
	if err != nil {
		return nil, err
	}
	job := &model.Job{
		TenantID:  tenantID,
		Title:     title,
		Content:   content,
		Embedding: pgvector.NewVector(embedding),
	}
	if err := uc.jobs.CreateJob(job); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "store job failed", err)
	}
	return job, nil
}

func errorEvent(err error) BatchEvent {
	return BatchEvent{
		Type:  EventError,
		Error: &ItemError{Kind: string(apperr.KindOf(err)), Message: err.Error()},
	}
}
