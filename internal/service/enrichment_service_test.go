package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/config"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

func newTestEnrichmentService(t *testing.T, handler http.HandlerFunc) (*EnrichmentService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.EnrichmentConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 2 * time.Second,
	}
	svc := NewEnrichmentService(cfg, NewEnrichmentBudget(0), zap.NewNop())
	return svc, srv
}

func TestLookupPicksBackendByHandle(t *testing.T) {
	var paths []string
	svc, _ := newTestEnrichmentService(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_company":"Acme"}`))
	})

	_, err := svc.Lookup(context.Background(), model.LookupCriteria{
		ProfileHandle: "https://example.com/in/asmith",
	})
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), model.LookupCriteria{
		Name: "B Jones", Company: "Globex",
	})
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "/v1/profiles", paths[0])
	assert.Equal(t, "/v1/profiles/search", paths[1])
}

func TestLookupRequiresNameOrHandle(t *testing.T) {
	svc, _ := newTestEnrichmentService(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := svc.Lookup(context.Background(), model.LookupCriteria{Company: "Acme"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLookupCachesByCriteria(t *testing.T) {
	requests := 0
	svc, _ := newTestEnrichmentService(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_company":"Acme","open_to_work":true}`))
	})

	criteria := model.LookupCriteria{Name: "A Smith", Company: "Acme"}
	first, err := svc.Lookup(context.Background(), criteria)
	require.NoError(t, err)
	second, err := svc.Lookup(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, first, second)
	assert.Equal(t, "Acme", second.CurrentCompany)
	assert.True(t, second.OpenToWork)
}

func TestLookupStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusTooManyRequests, apperr.KindRateLimited},
		{http.StatusUnauthorized, apperr.KindUnauthorized},
		{http.StatusForbidden, apperr.KindUnauthorized},
		{http.StatusBadGateway, apperr.KindUnavailable},
	}

	for _, tc := range cases {
		status := tc.status
		svc, _ := newTestEnrichmentService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := svc.Lookup(context.Background(), model.LookupCriteria{Name: "A"})
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, apperr.IsKind(err, tc.kind), "status %d expected kind %s, got %s", tc.status, tc.kind, apperr.KindOf(err))
	}
}

func TestLookupCanceledWhilePacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := &config.EnrichmentConfig{BaseURL: srv.URL, RequestTimeout: time.Second}
	svc := NewEnrichmentService(cfg, NewEnrichmentBudget(time.Minute), zap.NewNop())

	// First lookup consumes the pacing slot.
	_, err := svc.Lookup(context.Background(), model.LookupCriteria{Name: "A"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Lookup(ctx, model.LookupCriteria{Name: "B"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnavailable))
}

func TestBudgetPacesRequests(t *testing.T) {
	budget := NewEnrichmentBudget(30 * time.Millisecond)
	start := time.Now()
	require.NoError(t, budget.wait(context.Background()))
	require.NoError(t, budget.wait(context.Background()))
	require.NoError(t, budget.wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
