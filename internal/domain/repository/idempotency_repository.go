package repository

import (
	"context"

	"github.com/sangkips/posprint/internal/domain/entity"
)

// IdempotencyRepository stores print responses keyed by terminal and Idempotency-Key.
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key, clientID string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired is run periodically by the agent.
	DeleteExpired(ctx context.Context) error
}
