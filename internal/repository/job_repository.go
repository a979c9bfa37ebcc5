package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// SearchJobs returns the tenant's jobs closest to the embedding, nearest
// first (pgvector <-> distance).
func (r *JobRepository) SearchJobs(tenantID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM jobs
        WHERE tenant_id = ?
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, tenantID, embedding, topK).Scan(&jobs).Error
	return jobs, err
}

func (r *JobRepository) CreateJob(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) UpdateJob(job *model.Job) error {
	return r.db.Save(job).Error
}

func (r *JobRepository) FindJobByID(tenantID, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
