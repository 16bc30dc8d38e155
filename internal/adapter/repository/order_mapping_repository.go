package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/repository"
)

// orderMappingRepository implements the OrderMappingRepository interface
type orderMappingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderMappingRepository creates a new order mapping repository
func NewOrderMappingRepository(db *gorm.DB, logger *zap.Logger) repository.OrderMappingRepository {
	return &orderMappingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderMappingRepository) Create(ctx context.Context, mapping *model.GatewayOrderMapping) error {
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		r.logger.Error("failed to create order mapping",
			zap.String("external_order_id", mapping.ExternalOrderID),
			zap.String("transaction_id", mapping.TransactionID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create order mapping: %w", err)
	}
	return nil
}

func (r *orderMappingRepository) GetByExternalID(ctx context.Context, externalOrderID string) (*model.GatewayOrderMapping, error) {
	var mapping model.GatewayOrderMapping
	err := r.db.WithContext(ctx).
		Where("external_order_id = ?", externalOrderID).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get order mapping",
			zap.String("external_order_id", externalOrderID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get order mapping: %w", err)
	}
	return &mapping, nil
}
