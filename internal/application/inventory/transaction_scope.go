package inventory

import (
	"context"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Posting a stock entry always runs inside one scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository a posting
// touches, all sharing the same underlying transaction.
type TransactionalRepositories interface {
	// ItemRepo returns the catalog item repository scoped to the transaction.
	ItemRepo() catalog.ItemRepository
	// EntryRepo returns the stock entry repository scoped to the transaction.
	EntryRepo() inventory.StockEntryRepository
	// MovementRepo returns the movement ledger repository scoped to the transaction.
	MovementRepo() inventory.StockMovementRepository
	// LevelRepo returns the stock level repository scoped to the transaction.
	LevelRepo() inventory.StockLevelRepository
	// BatchRepo returns the batch repository scoped to the transaction.
	BatchRepo() inventory.BatchRepository
	// LayerRepo returns the cost layer repository scoped to the transaction.
	LayerRepo() inventory.CostLayerRepository
}

// NoOpTransactionScope runs the function without a real transaction. Useful
// for tests with in-memory repositories.
type NoOpTransactionScope struct {
	itemRepo     catalog.ItemRepository
	entryRepo    inventory.StockEntryRepository
	movementRepo inventory.StockMovementRepository
	levelRepo    inventory.StockLevelRepository
	batchRepo    inventory.BatchRepository
	layerRepo    inventory.CostLayerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories.
func NewNoOpTransactionScope(
	itemRepo catalog.ItemRepository,
	entryRepo inventory.StockEntryRepository,
	movementRepo inventory.StockMovementRepository,
	levelRepo inventory.StockLevelRepository,
	batchRepo inventory.BatchRepository,
	layerRepo inventory.CostLayerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:     itemRepo,
		entryRepo:    entryRepo,
		movementRepo: movementRepo,
		levelRepo:    levelRepo,
		batchRepo:    batchRepo,
		layerRepo:    layerRepo,
	}
}

// Execute runs the function directly against the wrapped repositories.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the catalog item repository.
func (s *NoOpTransactionScope) ItemRepo() catalog.ItemRepository { return s.itemRepo }

// EntryRepo returns the stock entry repository.
func (s *NoOpTransactionScope) EntryRepo() inventory.StockEntryRepository { return s.entryRepo }

// MovementRepo returns the movement ledger repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// LevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) LevelRepo() inventory.StockLevelRepository { return s.levelRepo }

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository { return s.batchRepo }

// LayerRepo returns the cost layer repository.
func (s *NoOpTransactionScope) LayerRepo() inventory.CostLayerRepository { return s.layerRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
