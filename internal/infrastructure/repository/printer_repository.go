package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"gorm.io/gorm"
)

type printerRepository struct {
	db *gorm.DB
}

// NewPrinterRepository creates a new printer repository
func NewPrinterRepository(db *gorm.DB) domainRepo.PrinterRepository {
	return &printerRepository{db: db}
}

func (r *printerRepository) FindActiveByRole(ctx context.Context, role enum.PrinterRole) (*entity.Printer, error) {
	var p entity.Printer
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("updated_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *printerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Printer, error) {
	var p entity.Printer
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *printerRepository) List(ctx context.Context) ([]entity.Printer, error) {
	var printers []entity.Printer
	err := r.db.WithContext(ctx).Order("role ASC, name ASC").Find(&printers).Error
	return printers, err
}
