package repository

import "context"

// BillSequenceRepository issues display bill numbers
type BillSequenceRepository interface {
	// Next atomically increments the named sequence and returns the new value
	Next(ctx context.Context, name string) (int64, error)
}
