package repository

import (
	"context"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
)

// OrderMappingRepository resolves gateway-issued order ids to local
// transactions.
type OrderMappingRepository interface {
	Create(ctx context.Context, mapping *model.GatewayOrderMapping) error
	GetByExternalID(ctx context.Context, externalOrderID string) (*model.GatewayOrderMapping, error)
}
