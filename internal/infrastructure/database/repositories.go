package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/adapter/repository"
	domainRepo "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Transaction  domainRepo.TransactionRepository
	Payment      domainRepo.PaymentRepository
	OrderMapping domainRepo.OrderMappingRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Transaction:  repository.NewTransactionRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		OrderMapping: repository.NewOrderMappingRepository(db, logger),
	}
}
