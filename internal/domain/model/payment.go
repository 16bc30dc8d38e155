package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod identifies the gateway that handled a payment attempt
type PaymentMethod string

const (
	PaymentMethodVNPay  PaymentMethod = "vnpay"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// PaymentStatus represents the outcome of a single payment attempt
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records one gateway payment attempt against a transaction. A
// transaction may accumulate many attempts (retries, replayed callbacks)
// but at most one row may be success.
type Payment struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Method        PaymentMethod `gorm:"size:20;not null" json:"method"`
	Status        PaymentStatus `gorm:"size:20;not null" json:"status"`
	GatewayTxnID  *string       `gorm:"column:gateway_txn_id;size:100" json:"gateway_txn_id,omitempty"`
	// GatewayResponse holds the raw callback or capture payload verbatim for
	// audit and replay; it is parsed lazily, never trusted for state.
	GatewayResponse JSONB     `gorm:"type:jsonb" json:"gateway_response,omitempty"`
	CreatedAt       time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONB: %T", src)
	}

	return json.Unmarshal(data, j)
}
