package model

import (
	"time"

	"github.com/google/uuid"
)

// GatewayOrderMapping maps an externally issued order id back to a local
// transaction. Callbacks from the order gateway carry only the external id,
// so this row is the only trusted way to resolve them; client-supplied local
// ids are never used.
type GatewayOrderMapping struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalOrderID string        `gorm:"uniqueIndex;size:100;not null" json:"external_order_id"`
	TransactionID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Method          PaymentMethod `gorm:"size:20;not null" json:"method"`
	CreatedAt       time.Time     `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (GatewayOrderMapping) TableName() string {
	return "gateway_order_mappings"
}
