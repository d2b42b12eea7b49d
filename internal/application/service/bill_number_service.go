package service

import (
	"context"

	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/receipt"
)

// DefaultBillSequence names the counter used for printed bill numbers.
const DefaultBillSequence = "bill"

// NewBillNumberer returns a receipt.BillNumberer that draws from the named sequence.
func NewBillNumberer(seq repository.BillSequenceRepository, name string) receipt.BillNumberer {
	if name == "" {
		name = DefaultBillSequence
	}
	return receipt.BillNumbererFunc(func(ctx context.Context) (int64, error) {
		return seq.Next(ctx, name)
	})
}
