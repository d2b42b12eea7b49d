package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/pagination"
)

// PrintJobFilter narrows a print job listing
type PrintJobFilter struct {
	Document string
	Status   *enum.PrintJobStatus
}

// PrintJobRepository defines the interface for the print log
type PrintJobRepository interface {
	Create(ctx context.Context, job *entity.PrintJob) error
	Update(ctx context.Context, job *entity.PrintJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PrintJob, error)
	List(ctx context.Context, filter PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error)
}
