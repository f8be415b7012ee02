package inventory

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// CostLayer is a cost-bearing slice of received quantity for one (item,
// warehouse, bin) key, consumed oldest-first under FIFO valuation. Each
// receipt pushes a layer; issues deduct from the oldest remaining layers.
type CostLayer struct {
	shared.BaseEntity
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_layer_key,priority:1"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_layer_key,priority:2"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index:idx_layer_key,priority:3"`
	Bin         string          `gorm:"type:varchar(50);not null;index:idx_layer_key,priority:4"`
	Sequence    int64           `gorm:"not null;index:idx_layer_key,priority:5"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Consumed    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM.
func (CostLayer) TableName() string {
	return "cost_layers"
}

// NewCostLayer creates a layer from a receipt.
func NewCostLayer(companyID, itemID, warehouseID uuid.UUID, bin string, sequence int64, quantity, unitCost decimal.Decimal) *CostLayer {
	return &CostLayer{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyID:   companyID,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Bin:         bin,
		Sequence:    sequence,
		Quantity:    quantity,
		UnitCost:    unitCost,
	}
}

// Deduct reduces the layer by up to the requested quantity and returns the
// quantity actually taken. A layer that reaches zero is marked consumed.
func (l *CostLayer) Deduct(quantity decimal.Decimal) decimal.Decimal {
	taken := quantity
	if quantity.GreaterThan(l.Quantity) {
		taken = l.Quantity
	}
	l.Quantity = l.Quantity.Sub(taken)
	if l.Quantity.IsZero() {
		l.Consumed = true
	}
	l.Touch()
	return taken
}

// HasStock returns true if the layer still carries quantity.
func (l *CostLayer) HasStock() bool {
	return l.Quantity.IsPositive() && !l.Consumed
}

// LayerConsumption records how much of one layer an issue consumed.
type LayerConsumption struct {
	LayerID  uuid.UUID
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// IssueValuation is the result of valuing an outbound movement.
type IssueValuation struct {
	UnitCost               decimal.Decimal
	ConsumedLayers         []LayerConsumption
	RequiresReconciliation bool
}

// ValuationEngine computes the unit cost to attach to each stock movement
// according to the item's configured valuation method, and maintains the FIFO
// cost layers where applicable.
type ValuationEngine struct{}

// NewValuationEngine creates a ValuationEngine.
func NewValuationEngine() *ValuationEngine {
	return &ValuationEngine{}
}

// ReceiptCost returns the unit cost to record for an inbound movement.
// Standard items ignore the supplied rate and always use the configured cost
// price; weighted-average and FIFO items take the supplied rate as-is (the
// running average and the new layer are maintained by the projection and the
// caller respectively).
func (e *ValuationEngine) ReceiptCost(item *catalog.Item, suppliedRate decimal.Decimal) (decimal.Decimal, error) {
	if suppliedRate.IsNegative() {
		return decimal.Zero, shared.NewValidationError("INVALID_RATE", "Supplied rate cannot be negative")
	}

	switch item.ValuationMethod {
	case catalog.ValuationStandard:
		return item.CostPrice, nil
	default:
		return suppliedRate, nil
	}
}

// IssueCost returns the unit cost to record for an outbound movement of the
// given quantity. Issuing more than the on-hand quantity is rejected for all
// methods unless allowNegative is set, in which case the line is valued at
// the item's last-known cost and flagged for reconciliation.
//
// FIFO consumes from the oldest layers first, splitting a layer when the
// issue is smaller than its remaining quantity; the returned cost is the
// quantity-weighted average of the layers consumed.
func (e *ValuationEngine) IssueCost(
	item *catalog.Item,
	level *StockLevel,
	layers []*CostLayer,
	quantity decimal.Decimal,
	allowNegative bool,
) (*IssueValuation, error) {
	required, err := item.Measure(quantity)
	if err != nil || !required.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Issue quantity must be positive")
	}

	if item.ValuationMethod == catalog.ValuationFIFO {
		return e.fifoIssueCost(item, layers, required, allowNegative)
	}

	if level.Quantity.LessThan(quantity) {
		if !allowNegative {
			return nil, shared.NewInsufficientStockError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Issue of %s exceeds on-hand quantity for %s, %s",
					required, item.SKU, shortBy(item, level.Quantity, required)))
		}
		return &IssueValuation{
			UnitCost:               item.LastKnownCost,
			RequiresReconciliation: true,
		}, nil
	}

	switch item.ValuationMethod {
	case catalog.ValuationStandard:
		return &IssueValuation{UnitCost: item.CostPrice}, nil
	default:
		// Weighted average: the issue itself does not move the average.
		return &IssueValuation{UnitCost: level.AvgCost}, nil
	}
}

// shortBy renders the missing amount as a unit-tagged quantity for error
// messages. On-hand below zero counts as nothing on hand.
func shortBy(item *catalog.Item, onHand decimal.Decimal, required valueobject.Quantity) string {
	if onHand.IsNegative() {
		onHand = decimal.Zero
	}
	held, err := item.Measure(onHand)
	if err != nil {
		return "short " + required.String()
	}
	missing, err := held.Deficit(required)
	if err != nil {
		return "short " + required.String()
	}
	return "short " + missing.String()
}

// fifoIssueCost consumes layered quantity oldest-first and returns the
// weighted-average cost of what was consumed.
func (e *ValuationEngine) fifoIssueCost(
	item *catalog.Item,
	layers []*CostLayer,
	required valueobject.Quantity,
	allowNegative bool,
) (*IssueValuation, error) {
	quantity := required.Amount()
	ordered := make([]*CostLayer, 0, len(layers))
	for _, l := range layers {
		if l.HasStock() {
			ordered = append(ordered, l)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	available := decimal.Zero
	for _, l := range ordered {
		available = available.Add(l.Quantity)
	}

	if available.LessThan(quantity) {
		if !allowNegative {
			return nil, shared.NewInsufficientStockError("INSUFFICIENT_LAYERED_STOCK",
				fmt.Sprintf("Issue of %s exceeds available FIFO layer quantity for %s, %s",
					required, item.SKU, shortBy(item, available, required)))
		}
		// Override: drain whatever layers exist and value the whole line at
		// the item's last-known cost.
		result := &IssueValuation{
			UnitCost:               item.LastKnownCost,
			RequiresReconciliation: true,
		}
		remaining := quantity
		for _, l := range ordered {
			if !remaining.IsPositive() {
				break
			}
			taken := l.Deduct(remaining)
			remaining = remaining.Sub(taken)
			result.ConsumedLayers = append(result.ConsumedLayers, LayerConsumption{
				LayerID:  l.ID,
				Quantity: taken,
				UnitCost: l.UnitCost,
			})
		}
		return result, nil
	}

	result := &IssueValuation{}
	remaining := quantity
	totalCost := decimal.Zero
	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		taken := l.Deduct(remaining)
		remaining = remaining.Sub(taken)
		totalCost = totalCost.Add(taken.Mul(l.UnitCost))
		result.ConsumedLayers = append(result.ConsumedLayers, LayerConsumption{
			LayerID:  l.ID,
			Quantity: taken,
			UnitCost: l.UnitCost,
		})
	}

	result.UnitCost = totalCost.Div(quantity).Round(4)
	return result, nil
}
