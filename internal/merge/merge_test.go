package merge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

func TestMergeFieldPriority(t *testing.T) {
	tenantID := uuid.New()
	existing := &model.StoredCandidate{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     "Old Name",
		Email:    "a@x.com",
		Company:  "Old Co",
		Title:    "Old Title",
		Location: "Old City",
	}

	out, _ := Merge(Input{
		TenantID:   tenantID,
		Existing:   existing,
		Submission: model.CandidateSubmission{Name: "New Name", Email: "a@x.com", Company: "Sub Co"},
		Enriched:   &model.EnrichedProfile{CurrentCompany: "Enriched Co", Location: "Enriched City"},
		MatchedBy:  model.MatchedByEmail,
		Now:        time.Now(),
	})

	// Enriched wins, then submission, then the stored value.
	assert.Equal(t, "Enriched Co", out.Company)
	assert.Equal(t, "Enriched City", out.Location)
	assert.Equal(t, "New Name", out.Name)
	assert.Equal(t, "Old Title", out.Title)
}

func TestMergeEmptyValuesNeverOverwrite(t *testing.T) {
	existing := &model.StoredCandidate{
		ID:      uuid.New(),
		Name:    "Kept",
		Email:   "kept@x.com",
		Company: "Kept Co",
		Skills:  []string{"Go"},
	}

	out, changes := Merge(Input{
		Existing:   existing,
		Submission: model.CandidateSubmission{Name: "Kept", Email: "kept@x.com"},
		MatchedBy:  model.MatchedByEmail,
		Now:        time.Now(),
	})

	assert.Equal(t, "Kept Co", out.Company)
	assert.Equal(t, []string{"Go"}, out.Skills)
	assert.Empty(t, changes)
}

func TestMergeEmailDemotion(t *testing.T) {
	existing := &model.StoredCandidate{
		ID:            uuid.New(),
		Email:         "old@x.com",
		ProfileHandle: "https://example.com/in/asmith",
	}

	out, _ := Merge(Input{
		Existing: existing,
		Submission: model.CandidateSubmission{
			Name:          "A Smith",
			Email:         "new@x.com",
			ProfileHandle: "https://example.com/in/asmith",
		},
		MatchedBy: model.MatchedByProfile,
		Now:       time.Now(),
	})

	assert.Equal(t, "new@x.com", out.Email)
	assert.Equal(t, "old@x.com", out.AlternateEmail)
}

func TestMergeEmailDemotionOnlyOnProfileMatch(t *testing.T) {
	existing := &model.StoredCandidate{ID: uuid.New(), Email: "old@x.com"}

	out, _ := Merge(Input{
		Existing:   existing,
		Submission: model.CandidateSubmission{Name: "A", Email: "old@x.com"},
		MatchedBy:  model.MatchedByEmail,
		Now:        time.Now(),
	})

	assert.Equal(t, "old@x.com", out.Email)
	assert.Empty(t, out.AlternateEmail)
}

func TestMergeListsReplacedWholesale(t *testing.T) {
	existing := &model.StoredCandidate{
		ID:     uuid.New(),
		Skills: []string{"Go", "Postgres", "Kafka"},
		Experience: []model.ExperienceEntry{
			{Company: "Old Co", Title: "Engineer", StartDate: "2018-01", EndDate: "2020-01"},
		},
	}

	out, _ := Merge(Input{
		Existing:   existing,
		Submission: model.CandidateSubmission{Name: "A"},
		Enriched: &model.EnrichedProfile{
			Skills: []string{"Rust"},
			Experience: []model.ExperienceEntry{
				{Company: "New Co", Title: "Staff Engineer", StartDate: "2020-02"},
			},
		},
		MatchedBy: model.MatchedByEmail,
		Now:       time.Now(),
	})

	// No element-wise union: the enriched lists replace the stored ones.
	assert.Equal(t, []string{"Rust"}, out.Skills)
	require.Len(t, out.Experience, 1)
	assert.Equal(t, "New Co", out.Experience[0].Company)
}

func TestMergeEnrichmentStatusTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("enrichment succeeded", func(t *testing.T) {
		out, _ := Merge(Input{
			Submission:          model.CandidateSubmission{Name: "A"},
			Enriched:            &model.EnrichedProfile{CurrentCompany: "Acme"},
			EnrichmentAttempted: true,
			Now:                 now,
		})
		assert.Equal(t, model.EnrichmentCompleted, out.EnrichmentStatus)
		require.NotNil(t, out.LastEnrichedAt)
		assert.Equal(t, now, *out.LastEnrichedAt)
	})

	t.Run("enrichment attempted but found nothing", func(t *testing.T) {
		out, _ := Merge(Input{
			Submission:          model.CandidateSubmission{Name: "A"},
			EnrichmentAttempted: true,
			Now:                 now,
		})
		assert.Equal(t, model.EnrichmentFailed, out.EnrichmentStatus)
		assert.Nil(t, out.LastEnrichedAt)
	})

	t.Run("enrichment not attempted keeps prior status", func(t *testing.T) {
		prior := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		existing := &model.StoredCandidate{
			ID:               uuid.New(),
			EnrichmentStatus: model.EnrichmentCompleted,
			LastEnrichedAt:   &prior,
		}
		out, _ := Merge(Input{
			Existing:   existing,
			Submission: model.CandidateSubmission{Name: "A"},
			MatchedBy:  model.MatchedByEmail,
			Now:        now,
		})
		assert.Equal(t, model.EnrichmentCompleted, out.EnrichmentStatus)
		assert.Equal(t, prior, *out.LastEnrichedAt)
	})
}

func TestMergeChangeLog(t *testing.T) {
	existing := &model.StoredCandidate{
		ID:      uuid.New(),
		Name:    "A Smith",
		Email:   "a@x.com",
		Company: "Acme",
	}

	_, changes := Merge(Input{
		Existing:   existing,
		Submission: model.CandidateSubmission{Name: "A Smith", Email: "a@x.com", Company: "Globex"},
		MatchedBy:  model.MatchedByEmail,
		Now:        time.Now(),
	})

	require.Len(t, changes, 1)
	assert.Equal(t, "company", changes[0].Field)
	assert.Equal(t, "Acme", changes[0].OldValue)
	assert.Equal(t, "Globex", changes[0].NewValue)
}

func TestMergeChangeLogRecordsEnrichmentTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lastActive := now.AddDate(0, 0, -2)
	existing := &model.StoredCandidate{ID: uuid.New(), Name: "A Smith"}

	_, changes := Merge(Input{
		Existing:            existing,
		Submission:          model.CandidateSubmission{Name: "A Smith"},
		Enriched:            &model.EnrichedProfile{LastActiveAt: &lastActive},
		MatchedBy:           model.MatchedByEmail,
		EnrichmentAttempted: true,
		Now:                 now,
	})

	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	assert.Contains(t, fields, "last_active_at")
	assert.Contains(t, fields, "last_enriched_at")
	assert.Contains(t, fields, "enrichment_status")
}

func TestMergeNewCandidate(t *testing.T) {
	tenantID := uuid.New()
	out, changes := Merge(Input{
		TenantID: tenantID,
		Submission: model.CandidateSubmission{
			Name:    "B Jones",
			Email:   "B@Y.com",
			Company: "Initech",
		},
		MatchedBy: model.MatchedByNone,
		Now:       time.Now(),
	})

	assert.Equal(t, tenantID, out.TenantID)
	assert.Equal(t, uuid.Nil, out.ID)
	assert.Equal(t, "b@y.com", out.Email)
	assert.Equal(t, model.EnrichmentPending, out.EnrichmentStatus)
	assert.NotEmpty(t, changes)
}
