package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StockEntryRepository defines the interface for stock entry persistence.
type StockEntryRepository interface {
	// FindByID finds an entry with its details and additional costs.
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*StockEntry, error)

	// FindByEntryNumber finds an entry by its human-readable number.
	FindByEntryNumber(ctx context.Context, companyID uuid.UUID, entryNumber string) (*StockEntry, error)

	// FindAll finds entries for a company, optionally filtered by state and
	// date range (nil bounds mean unbounded).
	FindAll(ctx context.Context, companyID uuid.UUID, state EntryState, from, to *time.Time, filter shared.Filter) ([]StockEntry, error)

	// Save creates or updates an entry together with its lines.
	Save(ctx context.Context, entry *StockEntry) error

	// Delete removes a draft entry and its lines. Posted entries are never
	// deleted; the implementation must refuse them.
	Delete(ctx context.Context, companyID, id uuid.UUID) error

	// NextEntryNumber allocates the next entry number for the company and
	// date, in the form SE-YYYYMMDD-NNNN.
	NextEntryNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error)

	// Count counts entries for a company in the given state (empty state
	// counts all).
	Count(ctx context.Context, companyID uuid.UUID, state EntryState) (int64, error)
}

// StockMovementRepository persists the append-only movement ledger.
// Movements are only ever inserted; there is no update or delete.
type StockMovementRepository interface {
	// SaveAll appends movements to the ledger.
	SaveAll(ctx context.Context, movements []*StockMovement) error

	// FindByKey returns all movements for one (item, warehouse, bin) key in
	// sequence order. Used for ledger queries and projection rebuild.
	FindByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) ([]StockMovement, error)

	// FindByItem returns movements for an item across all locations,
	// newest first.
	FindByItem(ctx context.Context, companyID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByEntry returns the movements produced by one stock entry.
	FindByEntry(ctx context.Context, companyID, stockEntryID uuid.UUID) ([]StockMovement, error)
}

// StockLevelRepository persists the stock level projection.
type StockLevelRepository interface {
	// FindByKey finds the projection for one (item, warehouse, bin) key.
	FindByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*StockLevel, error)

	// FindByItem returns all location balances for an item.
	FindByItem(ctx context.Context, companyID, itemID uuid.UUID) ([]StockLevel, error)

	// FindByWarehouse returns all balances in a warehouse.
	FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// FindBelowReorderLevel returns levels whose quantity is below the
	// owning item's reorder level.
	FindBelowReorderLevel(ctx context.Context, companyID uuid.UUID) ([]StockLevel, error)

	// Save creates a projection row.
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock updates a projection row guarded by its version; it
	// returns a concurrency-conflict error when the row has moved on.
	SaveWithLock(ctx context.Context, level *StockLevel, expectedVersion int) error
}

// BatchRepository defines the interface for batch persistence.
type BatchRepository interface {
	// FindByID finds a batch by ID within a company.
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Batch, error)

	// FindByNumber finds a batch by its (item, batch number) identity.
	FindByNumber(ctx context.Context, companyID, itemID uuid.UUID, batchNumber string) (*Batch, error)

	// FindByItem returns batches of an item, optionally only those with
	// on-hand quantity.
	FindByItem(ctx context.Context, companyID, itemID uuid.UUID, onlyWithStock bool) ([]Batch, error)

	// FindExpired returns enabled batches whose expiry date has passed.
	FindExpired(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]Batch, error)

	// FindExpiringWithin returns enabled batches expiring in the window.
	FindExpiringWithin(ctx context.Context, companyID uuid.UUID, days int) ([]Batch, error)

	// ExistsByNumber checks the (item, batch number) uniqueness constraint.
	ExistsByNumber(ctx context.Context, companyID, itemID uuid.UUID, batchNumber string) (bool, error)

	// Save creates or updates a batch.
	Save(ctx context.Context, batch *Batch) error
}

// CostLayerRepository persists FIFO cost layers.
type CostLayerRepository interface {
	// FindOpenByKey returns unconsumed layers for a key in sequence order.
	FindOpenByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) ([]*CostLayer, error)

	// NextSequence allocates the next layer sequence for a key.
	NextSequence(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (int64, error)

	// Save creates or updates a layer.
	Save(ctx context.Context, layer *CostLayer) error

	// SaveAll creates or updates layers in one call.
	SaveAll(ctx context.Context, layers []*CostLayer) error
}
