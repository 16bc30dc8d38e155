package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
)

// PaymentRepository appends payment attempt rows. It never touches
// transaction status; the checkout service holds that authority.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]model.Payment, error)
	// HasSuccess reports whether a success row already exists for the
	// transaction, guarding the at-most-one-success invariant.
	HasSuccess(ctx context.Context, transactionID uuid.UUID) (bool, error)
}
