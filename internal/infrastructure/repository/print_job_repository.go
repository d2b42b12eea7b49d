package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
	"gorm.io/gorm"
)

type printJobRepository struct {
	db *gorm.DB
}

// NewPrintJobRepository creates a new print job repository
func NewPrintJobRepository(db *gorm.DB) domainRepo.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) Create(ctx context.Context, job *entity.PrintJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *printJobRepository) Update(ctx context.Context, job *entity.PrintJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *printJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PrintJob, error) {
	var job entity.PrintJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &job, err
}

func (r *printJobRepository) List(ctx context.Context, filter domainRepo.PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	var jobs []entity.PrintJob
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PrintJob{})
	if filter.Document != "" {
		query = query.Where("document = ?", filter.Document)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&jobs).Error

	return jobs, total, err
}
