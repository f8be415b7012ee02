package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// GormTransactionScope implements the application TransactionScope using GORM
// transactions. All repositories handed to the callback share one transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the function within a database transaction. An error rolls
// the transaction back; success commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ItemRepo returns the catalog item repository scoped to the transaction.
func (r *gormTransactionalRepositories) ItemRepo() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// EntryRepo returns the stock entry repository scoped to the transaction.
func (r *gormTransactionalRepositories) EntryRepo() inventory.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// MovementRepo returns the movement ledger repository scoped to the transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// LevelRepo returns the stock level repository scoped to the transaction.
func (r *gormTransactionalRepositories) LevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// BatchRepo returns the batch repository scoped to the transaction.
func (r *gormTransactionalRepositories) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// LayerRepo returns the cost layer repository scoped to the transaction.
func (r *gormTransactionalRepositories) LayerRepo() inventory.CostLayerRepository {
	return NewGormCostLayerRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
