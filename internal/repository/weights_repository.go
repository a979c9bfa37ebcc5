package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

type WeightsRepository struct {
	db *gorm.DB
}

func NewWeightsRepository(db *gorm.DB) *WeightsRepository {
	return &WeightsRepository{db}
}

// Get returns the tenant's configured weights, or nil when the tenant uses
// the system defaults.
func (r *WeightsRepository) Get(tenantID uuid.UUID) (*model.TenantWeights, error) {
	var weights model.TenantWeights
	err := r.db.Where("tenant_id = ?", tenantID).First(&weights).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &weights, nil
}

func (r *WeightsRepository) Set(tenantID uuid.UUID, weights model.ScoringWeights) error {
	row := model.TenantWeights{TenantID: tenantID, Weights: weights}
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weights", "updated_at"}),
		}).
		Create(&row).Error
}
