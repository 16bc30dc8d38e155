package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   TransactionStatus
		to     TransactionStatus
		expect bool
	}{
		{"pending to completed", TransactionStatusPending, TransactionStatusCompleted, true},
		{"pending to failed", TransactionStatusPending, TransactionStatusFailed, true},
		{"pending to refunded", TransactionStatusPending, TransactionStatusRefunded, false},
		{"completed to refunded", TransactionStatusCompleted, TransactionStatusRefunded, true},
		{"completed to failed", TransactionStatusCompleted, TransactionStatusFailed, false},
		{"completed to pending", TransactionStatusCompleted, TransactionStatusPending, false},
		{"failed to completed", TransactionStatusFailed, TransactionStatusCompleted, false},
		{"failed to pending", TransactionStatusFailed, TransactionStatusPending, false},
		{"failed to refunded", TransactionStatusFailed, TransactionStatusRefunded, false},
		{"refunded is terminal", TransactionStatusRefunded, TransactionStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}
}
