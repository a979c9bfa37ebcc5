package model

import (
	"time"

	"github.com/google/uuid"
)

type EnrichmentStatus string

const (
	EnrichmentPending    EnrichmentStatus = "pending"
	EnrichmentInProgress EnrichmentStatus = "in_progress"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentFailed     EnrichmentStatus = "failed"
)

type ExperienceEntry struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	Industry  string `json:"industry,omitempty"`
	StartDate string `json:"start_date"` // YYYY-MM
	EndDate   string `json:"end_date"`   // empty means current role
}

type EducationEntry struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
	Year   string `json:"year,omitempty"`
}

// StoredCandidate is the canonical persisted record for a tenant+identity.
// It is created on the first unmatched submission and mutated in place on
// every matched re-submission.
type StoredCandidate struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID       uuid.UUID `gorm:"type:uuid;index:idx_candidates_tenant_email;index:idx_candidates_tenant_handle" json:"tenant_id"`
	Name           string    `gorm:"type:varchar(255)" json:"name"`
	Email          string    `gorm:"type:varchar(255);index:idx_candidates_tenant_email" json:"email"`
	AlternateEmail string    `gorm:"type:varchar(255)" json:"alternate_email"`
	Company        string    `gorm:"type:varchar(255)" json:"company"`
	Title          string    `gorm:"type:varchar(255)" json:"title"`
	Location       string    `gorm:"type:varchar(255)" json:"location"`
	ProfileHandle  string    `gorm:"type:varchar(512);index:idx_candidates_tenant_handle" json:"profile_handle"`
	Summary        string    `gorm:"type:text" json:"summary"`

	Skills         []string          `gorm:"serializer:json;type:jsonb" json:"skills"`
	Experience     []ExperienceEntry `gorm:"serializer:json;type:jsonb" json:"experience"`
	Education      []EducationEntry  `gorm:"serializer:json;type:jsonb" json:"education"`
	Certifications []string          `gorm:"serializer:json;type:jsonb" json:"certifications"`

	OpenToWork       bool       `json:"open_to_work"`
	ConnectionsCount int        `json:"connections_count"`
	LastActiveAt     *time.Time `json:"last_active_at"`

	Score            float64          `gorm:"type:float" json:"score"`
	PriorityTier     string           `gorm:"type:varchar(10)" json:"priority_tier"`
	HireabilityScore float64          `gorm:"type:float" json:"hireability_score"`
	PotentialToJoin  string           `gorm:"type:varchar(10)" json:"potential_to_join"`
	EnrichmentStatus EnrichmentStatus `gorm:"type:varchar(20)" json:"enrichment_status"`
	LastEnrichedAt   *time.Time       `json:"last_enriched_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *StoredCandidate) TableName() string {
	return "candidates"
}
