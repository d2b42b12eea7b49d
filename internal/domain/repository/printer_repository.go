package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

// PrinterRepository defines read access to configured printers
type PrinterRepository interface {
	// FindActiveByRole returns the active printer serving role, or nil when none is assigned
	FindActiveByRole(ctx context.Context, role enum.PrinterRole) (*entity.Printer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Printer, error)
	List(ctx context.Context) ([]entity.Printer, error)
}
