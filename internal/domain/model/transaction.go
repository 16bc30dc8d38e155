package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatus represents the lifecycle state of a purchase transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// CanTransitionTo reports whether the state machine allows moving to target.
// Legal transitions: pending -> completed|failed, completed -> refunded.
// There is no way out of failed; a failed attempt needs a new transaction.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return target == TransactionStatusCompleted || target == TransactionStatusFailed
	case TransactionStatusCompleted:
		return target == TransactionStatusRefunded
	default:
		return false
	}
}

// Transaction is the root of the purchase ledger. Status is mutated only by
// the checkout service through conditional updates; rows are never hard
// deleted.
type Transaction struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	AmountMinor       int64             `gorm:"column:amount_minor;not null" json:"amount_minor"`
	Currency          string            `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status            TransactionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RefundReason      *string           `gorm:"size:255" json:"refund_reason,omitempty"`
	RefundAmountMinor *int64            `gorm:"column:refund_amount_minor" json:"refund_amount_minor,omitempty"`
	CreatedBy         *string           `gorm:"size:100" json:"created_by,omitempty"`
	UpdatedBy         *string           `gorm:"size:100" json:"updated_by,omitempty"`
	CreatedAt         time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Items    []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
	Payments []Payment         `gorm:"foreignKey:TransactionID" json:"payments,omitempty"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns the transaction id when the caller did not
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TransactionItem is a purchased line item. The unit price is frozen at
// purchase time and never follows later catalog changes.
type TransactionItem struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	CourseID       uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null" json:"unit_price_minor"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TransactionItem) TableName() string {
	return "transaction_items"
}
