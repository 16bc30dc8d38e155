package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/repository"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		r.logger.Error("failed to create payment record",
			zap.String("transaction_id", payment.TransactionID.String()),
			zap.String("method", string(payment.Method)),
			zap.Error(err))
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		r.logger.Error("failed to list payments",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) HasSuccess(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("transaction_id = ? AND status = ?", transactionID, model.PaymentStatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check success payment: %w", err)
	}
	return count > 0, nil
}
