package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.Transaction{},
		&model.TransactionItem{},
		&model.Payment{},
		&model.GatewayOrderMapping{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// At most one success payment per transaction, enforced at the database
	// as the final line of defense behind the conditional transition.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_success_payment_per_transaction ON payments (transaction_id) WHERE status = 'success'`).Error; err != nil {
		return err
	}

	// Pending transactions are what callbacks look up
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_transactions_pending ON transactions (created_at) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return nil
}
