package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/repository"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) repository.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePending persists the transaction and its items atomically
func (r *transactionRepository) CreatePending(ctx context.Context, tx *model.Transaction) error {
	tx.Status = model.TransactionStatusPending

	err := r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return dbTx.Create(tx).Error
	})
	if err != nil {
		r.logger.Error("failed to create pending transaction",
			zap.String("user_id", tx.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create pending transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get transaction",
			zap.String("transaction_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get transaction with items",
			zap.String("transaction_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		r.logger.Error("failed to count user transactions",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count user transactions: %w", err)
	}

	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		r.logger.Error("failed to list user transactions",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list user transactions: %w", err)
	}

	return transactions, total, nil
}

// TransitionStatus is a single conditional UPDATE. RowsAffected == 0 means a
// concurrent callback already moved the row; that is reported as false, not
// an error, so duplicate gateway deliveries stay harmless.
func (r *transactionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("illegal status transition %s -> %s", from, to)
	}

	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		r.logger.Error("failed to transition transaction status",
			zap.String("transaction_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to transition status: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// MarkRefunded moves completed -> refunded and records the refund detail
// under the same compare-and-swap guard.
func (r *transactionRepository) MarkRefunded(ctx context.Context, id uuid.UUID, reason string, amountMinor int64, actor string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TransactionStatusCompleted).
		Updates(map[string]interface{}{
			"status":              model.TransactionStatusRefunded,
			"refund_reason":       reason,
			"refund_amount_minor": amountMinor,
			"updated_by":          actor,
		})
	if result.Error != nil {
		r.logger.Error("failed to mark transaction refunded",
			zap.String("transaction_id", id.String()),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to mark refunded: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
