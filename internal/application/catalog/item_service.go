package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// ItemService handles catalog item commands and queries.
type ItemService struct {
	itemRepo       catalog.ItemRepository
	eventPublisher shared.EventPublisher
}

// NewItemService creates an ItemService.
func NewItemService(itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// SetEventPublisher sets the publisher for item domain events.
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes an item's collected events and clears them.
func (s *ItemService) publishDomainEvents(ctx context.Context, item *catalog.Item) {
	if s.eventPublisher == nil {
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}

// CreateItem creates a catalog item. The SKU must be unique per company.
func (s *ItemService) CreateItem(ctx context.Context, companyID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	sku, err := valueobject.NewSKU(req.SKU)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_SKU", err.Error())
	}
	exists, err := s.itemRepo.ExistsBySKU(ctx, companyID, sku.String())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("DUPLICATE_SKU", "SKU "+sku.String()+" already exists")
	}

	method := catalog.ValuationMethod(req.ValuationMethod)
	if req.ValuationMethod == "" {
		method = catalog.ValuationWeightedAverage
	}

	item, err := catalog.NewItem(
		companyID,
		req.SKU, req.Name, req.Category, req.Unit,
		valueobject.NewMoneyZAR(req.SellingPrice),
		valueobject.NewMoneyZAR(req.CostPrice),
		req.ReorderLevel, req.ReorderQuantity,
		method,
	)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// GetItem returns an item by ID.
func (s *ItemService) GetItem(ctx context.Context, companyID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// GetItemBySKU returns an item by SKU.
func (s *ItemService) GetItemBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// ListItems returns items for a company.
func (s *ItemService) ListItems(ctx context.Context, companyID uuid.UUID, includeInactive bool, filter shared.Filter) (shared.Paginated[ItemResponse], error) {
	items, err := s.itemRepo.FindAll(ctx, companyID, includeInactive, filter)
	if err != nil {
		return shared.Paginated[ItemResponse]{}, err
	}
	total, err := s.itemRepo.Count(ctx, companyID, includeInactive)
	if err != nil {
		return shared.Paginated[ItemResponse]{}, err
	}

	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, *ToItemResponse(&items[i]))
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// UpdatePricing updates an item's selling and optionally cost price.
func (s *ItemService) UpdatePricing(ctx context.Context, companyID, itemID uuid.UUID, req UpdatePricingRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	var costPrice *valueobject.Money
	if req.CostPrice != nil {
		m := valueobject.NewMoneyZAR(*req.CostPrice)
		costPrice = &m
	}
	if err := item.UpdatePricing(valueobject.NewMoneyZAR(req.SellingPrice), costPrice); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// SetReorderLevels updates an item's reorder thresholds.
func (s *ItemService) SetReorderLevels(ctx context.Context, companyID, itemID uuid.UUID, req SetReorderLevelsRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.SetReorderLevels(req.ReorderLevel, req.ReorderQuantity); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// SetValuationMethod changes an item's costing policy for future movements.
func (s *ItemService) SetValuationMethod(ctx context.Context, companyID, itemID uuid.UUID, req SetValuationMethodRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.SetValuationMethod(catalog.ValuationMethod(req.ValuationMethod)); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// DeactivateItem soft-deactivates an item. Idempotent.
func (s *ItemService) DeactivateItem(ctx context.Context, companyID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	item.Deactivate()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// ActivateItem re-activates an item. Idempotent.
func (s *ItemService) ActivateItem(ctx context.Context, companyID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	item.Activate()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// ItemLookupAdapter adapts the item repository to the read-only lookup the
// ledger uses during posting and batch registration.
type ItemLookupAdapter struct {
	repo catalog.ItemRepository
}

// NewItemLookupAdapter creates an ItemLookupAdapter.
func NewItemLookupAdapter(repo catalog.ItemRepository) *ItemLookupAdapter {
	return &ItemLookupAdapter{repo: repo}
}

// Get returns the item or a not-found error.
func (a *ItemLookupAdapter) Get(ctx context.Context, companyID, itemID uuid.UUID) (*catalog.Item, error) {
	return a.repo.FindByID(ctx, companyID, itemID)
}

var _ catalog.ItemLookup = (*ItemLookupAdapter)(nil)
