package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
)

// TransactionRepository owns the transaction ledger. Status writes go
// through the conditional TransitionStatus/MarkRefunded methods only.
type TransactionRepository interface {
	// CreatePending persists a transaction together with its items in one
	// database transaction.
	CreatePending(ctx context.Context, tx *model.Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	GetByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Transaction, int64, error)

	// TransitionStatus applies `UPDATE ... SET status = to WHERE id = ? AND
	// status = from`. It returns (false, nil) when the row was already moved
	// by a concurrent callback; that is the duplicate-delivery guard, not an
	// error.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus) (bool, error)

	// MarkRefunded is the completed -> refunded transition, writing the
	// refund reason and amount under the same conditional guard.
	MarkRefunded(ctx context.Context, id uuid.UUID, reason string, amountMinor int64, actor string) (bool, error)
}
