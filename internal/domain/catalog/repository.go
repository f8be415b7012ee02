package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ItemRepository defines the interface for catalog item persistence.
type ItemRepository interface {
	// FindByID finds an item by ID within a company.
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Item, error)

	// FindBySKU finds an item by its SKU within a company.
	FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*Item, error)

	// FindAll finds items for a company, optionally including inactive ones.
	FindAll(ctx context.Context, companyID uuid.UUID, includeInactive bool, filter shared.Filter) ([]Item, error)

	// ExistsBySKU checks whether a SKU is already taken within a company.
	ExistsBySKU(ctx context.Context, companyID uuid.UUID, sku string) (bool, error)

	// Save creates or updates an item.
	Save(ctx context.Context, item *Item) error

	// Count counts items for a company.
	Count(ctx context.Context, companyID uuid.UUID, includeInactive bool) (int64, error)
}

// ItemLookup is the read-only collaborator interface the stock ledger uses to
// resolve item references during posting. Resolved once per Post call, never
// traversed lazily.
type ItemLookup interface {
	// Get returns the item or a not-found error.
	Get(ctx context.Context, companyID, itemID uuid.UUID) (*Item, error)
}
