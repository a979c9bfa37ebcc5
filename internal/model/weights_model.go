package model

import (
	"time"

	"github.com/google/uuid"
)

// TenantWeights stores a tenant's configured scoring weights.
type TenantWeights struct {
	TenantID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Weights   ScoringWeights `gorm:"serializer:json;type:jsonb" json:"weights"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (t *TenantWeights) TableName() string {
	return "tenant_weights"
}
