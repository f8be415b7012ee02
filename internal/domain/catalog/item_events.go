package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// AggregateTypeItem is the aggregate type for catalog items.
const AggregateTypeItem = "Item"

// Event type constants
const (
	EventTypeItemCreated     = "ItemCreated"
	EventTypeItemUpdated     = "ItemUpdated"
	EventTypeItemDeactivated = "ItemDeactivated"
	EventTypeItemActivated   = "ItemActivated"
)

// ItemCreatedEvent is raised when a catalog item is created.
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Unit            string          `json:"unit"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	ValuationMethod string          `json:"valuation_method"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent.
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID, item.CompanyID),
		SKU:             item.SKU,
		Name:            item.Name,
		Category:        item.Category,
		Unit:            item.Unit,
		SellingPrice:    item.SellingPrice,
		ValuationMethod: item.ValuationMethod.String(),
	}
}

// ItemUpdatedEvent is raised when pricing, classification or thresholds change.
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	Unit            string          `json:"unit"`
	ValuationMethod string          `json:"valuation_method"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent.
func NewItemUpdatedEvent(item *Item) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeItem, item.ID, item.CompanyID),
		SKU:             item.SKU,
		Name:            item.Name,
		SellingPrice:    item.SellingPrice,
		CostPrice:       item.CostPrice,
		ReorderLevel:    item.ReorderLevel,
		ReorderQuantity: item.ReorderQuantity,
		Unit:            item.Unit,
		ValuationMethod: item.ValuationMethod.String(),
	}
}

// ItemDeactivatedEvent is raised when an item is soft-deactivated.
type ItemDeactivatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewItemDeactivatedEvent creates a new ItemDeactivatedEvent.
func NewItemDeactivatedEvent(item *Item) *ItemDeactivatedEvent {
	return &ItemDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeactivated, AggregateTypeItem, item.ID, item.CompanyID),
		SKU:             item.SKU,
		Name:            item.Name,
	}
}

// ItemActivatedEvent is raised when an item is re-activated.
type ItemActivatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewItemActivatedEvent creates a new ItemActivatedEvent.
func NewItemActivatedEvent(item *Item) *ItemActivatedEvent {
	return &ItemActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemActivated, AggregateTypeItem, item.ID, item.CompanyID),
		SKU:             item.SKU,
		Name:            item.Name,
	}
}
