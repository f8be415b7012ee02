package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// ValuationMethod is the costing policy used to price stock movements of an item.
type ValuationMethod string

const (
	ValuationStandard        ValuationMethod = "standard"
	ValuationWeightedAverage ValuationMethod = "weighted_average"
	ValuationFIFO            ValuationMethod = "fifo"
)

// IsValid returns true if the valuation method is one of the known policies.
func (m ValuationMethod) IsValid() bool {
	switch m {
	case ValuationStandard, ValuationWeightedAverage, ValuationFIFO:
		return true
	}
	return false
}

// String returns the string representation of the valuation method.
func (m ValuationMethod) String() string {
	return string(m)
}

// Item represents a stock-keeping item in the catalog. It is the aggregate
// root for item identity, pricing, reorder thresholds and valuation method
// selection. Items are soft-deactivated, never hard-deleted once they have
// stock history.
type Item struct {
	shared.CompanyAggregateRoot
	SKU             string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_item_company_sku,priority:2"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Category        string          `gorm:"type:varchar(100);index"`
	Unit            string          `gorm:"type:varchar(20);not null"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastKnownCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ValuationMethod ValuationMethod `gorm:"type:varchar(20);not null;default:'weighted_average'"`
	Active          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM.
func (Item) TableName() string {
	return "items"
}

// NewItem creates a catalog item. The SKU is validated and normalized, the
// selling price must be positive, and cost price and reorder thresholds must
// not be negative.
func NewItem(
	companyID uuid.UUID,
	sku, name, category, unit string,
	sellingPrice valueobject.Money,
	costPrice valueobject.Money,
	reorderLevel, reorderQuantity decimal.Decimal,
	method ValuationMethod,
) (*Item, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	validSKU, err := valueobject.NewSKU(sku)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_SKU", err.Error())
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Item name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewValidationError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	if !sellingPrice.IsPositive() {
		return nil, shared.NewValidationError("INVALID_SELLING_PRICE", "Selling price must be positive")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST_PRICE", "Cost price cannot be negative")
	}
	if reorderLevel.IsNegative() || reorderQuantity.IsNegative() {
		return nil, shared.NewValidationError("INVALID_REORDER", "Reorder thresholds cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_VALUATION_METHOD", "Unknown valuation method")
	}

	item := &Item{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		SKU:                  validSKU.String(),
		Name:                 name,
		Category:             category,
		Unit:                 unit,
		SellingPrice:         sellingPrice.Amount(),
		CostPrice:            costPrice.Amount(),
		LastKnownCost:        costPrice.Amount(),
		ReorderLevel:         reorderLevel,
		ReorderQuantity:      reorderQuantity,
		ValuationMethod:      method,
		Active:               true,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// UpdatePricing updates the selling price and, optionally, the cost price.
// Pass nil for costPrice to leave it unchanged.
func (i *Item) UpdatePricing(sellingPrice valueobject.Money, costPrice *valueobject.Money) error {
	if !sellingPrice.IsPositive() {
		return shared.NewValidationError("INVALID_SELLING_PRICE", "Selling price must be positive")
	}
	if costPrice != nil && costPrice.IsNegative() {
		return shared.NewValidationError("INVALID_COST_PRICE", "Cost price cannot be negative")
	}

	i.SellingPrice = sellingPrice.Amount()
	if costPrice != nil {
		i.CostPrice = costPrice.Amount()
	}
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// SetReorderLevels updates the reorder threshold and suggested reorder quantity.
func (i *Item) SetReorderLevels(level, quantity decimal.Decimal) error {
	if level.IsNegative() || quantity.IsNegative() {
		return shared.NewValidationError("INVALID_REORDER", "Reorder thresholds cannot be negative")
	}

	i.ReorderLevel = level
	i.ReorderQuantity = quantity
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// ChangeUnit changes the unit of measure. The caller must ensure no stock
// movements exist against the item; the unit is immutable once stock does.
func (i *Item) ChangeUnit(unit string) error {
	if unit == "" {
		return shared.NewValidationError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	if unit == i.Unit {
		return nil
	}

	i.Unit = unit
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// SetValuationMethod changes the costing policy for future movements.
func (i *Item) SetValuationMethod(method ValuationMethod) error {
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_VALUATION_METHOD", "Unknown valuation method")
	}
	if method == i.ValuationMethod {
		return nil
	}

	i.ValuationMethod = method
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// UpdateLastKnownCost records the most recent unit cost seen by the ledger.
// Used to value negative-stock override issues.
func (i *Item) UpdateLastKnownCost(cost decimal.Decimal) {
	if cost.IsNegative() {
		return
	}
	i.LastKnownCost = cost
	i.Touch()
}

// Deactivate soft-deactivates the item. Calling it on an already inactive
// item is a no-op and emits no event.
func (i *Item) Deactivate() {
	if !i.Active {
		return
	}

	i.Active = false
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemDeactivatedEvent(i))
}

// Activate re-activates the item. Idempotent like Deactivate.
func (i *Item) Activate() {
	if i.Active {
		return
	}

	i.Active = true
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemActivatedEvent(i))
}

// IsLowStock reports whether the given current stock is below the reorder level.
func (i *Item) IsLowStock(currentStock decimal.Decimal) bool {
	return i.ReorderLevel.GreaterThan(decimal.Zero) && currentStock.LessThan(i.ReorderLevel)
}

// Measure expresses a raw amount in the item's unit of measure. The ledger
// stores bare decimals; this is where they pick up the unit for validation
// and reporting. Negative amounts are rejected.
func (i *Item) Measure(amount decimal.Decimal) (valueobject.Quantity, error) {
	return valueobject.NewQuantity(amount, i.Unit)
}

// SellingPriceMoney returns the selling price as a Money value object.
func (i *Item) SellingPriceMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(i.SellingPrice)
}

// CostPriceMoney returns the configured cost price as a Money value object.
func (i *Item) CostPriceMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(i.CostPrice)
}
