package repository

import (
	"context"
	"errors"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/repository"
	"gorm.io/gorm"
)

type businessProfileRepository struct {
	db *gorm.DB
}

// NewBusinessProfileRepository creates a new business profile repository
func NewBusinessProfileRepository(db *gorm.DB) repository.BusinessProfileRepository {
	return &businessProfileRepository{db: db}
}

// Get returns the single outlet profile
func (r *businessProfileRepository) Get(ctx context.Context) (*entity.BusinessProfile, error) {
	var profile entity.BusinessProfile
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Save creates the profile or updates it in place
func (r *businessProfileRepository) Save(ctx context.Context, profile *entity.BusinessProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
