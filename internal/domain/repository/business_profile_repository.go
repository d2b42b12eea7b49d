package repository

import (
	"context"

	"github.com/sangkips/posprint/internal/domain/entity"
)

// BusinessProfileRepository defines the interface for the outlet profile
type BusinessProfileRepository interface {
	// Get returns the outlet profile, or nil when it has not been set up
	Get(ctx context.Context) (*entity.BusinessProfile, error)
	Save(ctx context.Context, profile *entity.BusinessProfile) error
}
