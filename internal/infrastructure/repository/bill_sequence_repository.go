package repository

import (
	"context"
	"fmt"

	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"gorm.io/gorm"
)

type billSequenceRepository struct {
	db *gorm.DB
}

// NewBillSequenceRepository creates a bill number sequence backed by the bill_sequences table
func NewBillSequenceRepository(db *gorm.DB) domainRepo.BillSequenceRepository {
	return &billSequenceRepository{db: db}
}

// Next upserts the row and returns the incremented value in one statement
func (r *billSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO bill_sequences (name, last_value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (name) DO UPDATE
		SET last_value = bill_sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value`, name).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next bill number: %w", err)
	}
	return next, nil
}
