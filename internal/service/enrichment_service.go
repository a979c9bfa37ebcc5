package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/config"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

type EnrichmentServiceInterface interface {
	Lookup(ctx context.Context, criteria model.LookupCriteria) (*model.EnrichedProfile, error)
}

// enrichmentBackend is one way of reaching the provider. The gateway picks
// a backend per lookup by a pure predicate; backends share no state.
type enrichmentBackend interface {
	Name() string
	Fetch(ctx context.Context, criteria model.LookupCriteria) (*model.EnrichedProfile, error)
}

// EnrichmentBudget holds the rate-limit pacing and response cache for one or
// more gateways. It is constructed explicitly and injected, so separate
// orchestrators can share one budget or run with independent ones.
type EnrichmentBudget struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
	cache       map[string]*model.EnrichedProfile
}

func NewEnrichmentBudget(minInterval time.Duration) *EnrichmentBudget {
	return &EnrichmentBudget{
		minInterval: minInterval,
		cache:       make(map[string]*model.EnrichedProfile),
	}
}

// wait blocks until the pacing interval since the previous request has
// elapsed, or the context is done.
func (b *EnrichmentBudget) wait(ctx context.Context) error {
	b.mu.Lock()
	slot := b.lastRequest.Add(b.minInterval)
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	b.lastRequest = slot
	b.mu.Unlock()

	if delay := time.Until(slot); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *EnrichmentBudget) cached(key string) (*model.EnrichedProfile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	profile, ok := b.cache[key]
	return profile, ok
}

func (b *EnrichmentBudget) store(key string, profile *model.EnrichedProfile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[key] = profile
}

// EnrichmentService wraps the external profile-enrichment provider. A
// lookup with a known profile handle goes to the direct-handle backend,
// everything else through search.
type EnrichmentService struct {
	byHandle enrichmentBackend
	bySearch enrichmentBackend
	budget   *EnrichmentBudget
	logger   *zap.Logger
}

func NewEnrichmentService(cfg *config.EnrichmentConfig, budget *EnrichmentBudget, logger *zap.Logger) *EnrichmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(cfg.RequestTimeout)

	return &EnrichmentService{
		byHandle: &handleBackend{client: client},
		bySearch: &searchBackend{client: client},
		budget:   budget,
		logger:   logger,
	}
}

func (s *EnrichmentService) Lookup(ctx context.Context, criteria model.LookupCriteria) (*model.EnrichedProfile, error) {
	if criteria.Name == "" && criteria.ProfileHandle == "" {
		return nil, apperr.Validation("enrichment lookup requires a name or a profile handle")
	}

	key := cacheKey(criteria)
	if profile, ok := s.budget.cached(key); ok {
		s.logger.Debug("enrichment cache hit", zap.String("key", key))
		return profile, nil
	}

	backend := s.bySearch
	if criteria.ProfileHandle != "" {
		backend = s.byHandle
	}

	if err := s.budget.wait(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "enrichment lookup canceled while pacing", err)
	}

	profile, err := backend.Fetch(ctx, criteria)
	if err != nil {
		s.logger.Debug("enrichment lookup failed",
			zap.String("backend", backend.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	s.budget.store(key, profile)
	return profile, nil
}

func cacheKey(criteria model.LookupCriteria) string {
	if criteria.ProfileHandle != "" {
		return "handle:" + criteria.ProfileHandle
	}
	return "search:" + criteria.Name + "|" + criteria.Company + "|" + criteria.Title
}

type handleBackend struct {
	client *resty.Client
}

func (b *handleBackend) Name() string { return "handle" }

func (b *handleBackend) Fetch(ctx context.Context, criteria model.LookupCriteria) (*model.EnrichedProfile, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("handle", criteria.ProfileHandle).
		Get("/v1/profiles")
	return decodeProfileResponse(resp, err)
}

type searchBackend struct {
	client *resty.Client
}

func (b *searchBackend) Name() string { return "search" }

func (b *searchBackend) Fetch(ctx context.Context, criteria model.LookupCriteria) (*model.EnrichedProfile, error) {
	req := b.client.R().
		SetContext(ctx).
		SetQueryParam("name", criteria.Name)
	if criteria.Company != "" {
		req.SetQueryParam("company", criteria.Company)
	}
	if criteria.Title != "" {
		req.SetQueryParam("title", criteria.Title)
	}
	resp, err := req.Get("/v1/profiles/search")
	return decodeProfileResponse(resp, err)
}

// decodeProfileResponse maps provider responses onto the error taxonomy.
// Not-found is a distinct kind: the pipeline treats it as a valid outcome,
// not an item failure.
func decodeProfileResponse(resp *resty.Response, err error) (*model.EnrichedProfile, error) {
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "enrichment provider unreachable", err)
	}

	switch code := resp.StatusCode(); {
	case code == 200:
	case code == 404:
		return nil, apperr.New(apperr.KindNotFound, "no matching profile")
	case code == 429:
		return nil, apperr.New(apperr.KindRateLimited, "enrichment provider rate limited")
	case code == 401 || code == 403:
		return nil, apperr.New(apperr.KindUnauthorized, "enrichment provider rejected credentials")
	default:
		return nil, apperr.New(apperr.KindUnavailable, "enrichment provider returned "+resp.Status())
	}

	var profile model.EnrichedProfile
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "malformed enrichment response", err)
	}
	return &profile, nil
}
