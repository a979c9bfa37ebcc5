package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

func (r *CandidateRepository) FindByEmailAndHandle(tenantID uuid.UUID, email, handle string) (*model.StoredCandidate, error) {
	var candidate model.StoredCandidate
	err := r.db.
		Where("tenant_id = ? AND email = ? AND profile_handle = ?", tenantID, email, handle).
		First(&candidate).Error
	return oneOrNil(&candidate, err)
}

func (r *CandidateRepository) FindByEmail(tenantID uuid.UUID, email string) (*model.StoredCandidate, error) {
	var candidate model.StoredCandidate
	err := r.db.
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&candidate).Error
	return oneOrNil(&candidate, err)
}

func (r *CandidateRepository) FindByHandle(tenantID uuid.UUID, handle string) (*model.StoredCandidate, error) {
	var candidate model.StoredCandidate
	err := r.db.
		Where("tenant_id = ? AND profile_handle = ?", tenantID, handle).
		First(&candidate).Error
	return oneOrNil(&candidate, err)
}

func (r *CandidateRepository) FindByID(tenantID, id uuid.UUID) (*model.StoredCandidate, error) {
	var candidate model.StoredCandidate
	err := r.db.
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&candidate).Error
	return oneOrNil(&candidate, err)
}

func (r *CandidateRepository) List(tenantID uuid.UUID, page, pageSize int) ([]model.StoredCandidate, int64, error) {
	var candidates []model.StoredCandidate
	var total int64

	query := r.db.Model(&model.StoredCandidate{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&candidates).Error
	return candidates, total, err
}

// Upsert persists the canonical record. Updates lock the row for the span
// of the transaction so two batches resolving to the same (tenant, identity)
// never interleave their writes.
func (r *CandidateRepository) Upsert(record *model.StoredCandidate) (*model.StoredCandidate, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if record.ID == uuid.Nil {
			return tx.Create(record).Error
		}
		var current model.StoredCandidate
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", record.TenantID, record.ID).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}
		record.CreatedAt = current.CreatedAt
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func oneOrNil(candidate *model.StoredCandidate, err error) (*model.StoredCandidate, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return candidate, nil
}
