package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockLevel is the materialized running balance for one (item, warehouse,
// bin) key. It is derived entirely from the movement history and may be
// rebuilt by replay at any time. ApplyMovement is the only mutator and must
// be called exactly once per movement, in movement order.
type StockLevel struct {
	shared.CompanyAggregateRoot
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_level_key,priority:2"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_level_key,priority:3"`
	Bin            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_level_key,priority:4"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvgCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MovementCount  int64           `gorm:"not null;default:0"`
	LastMovementID *uuid.UUID      `gorm:"type:uuid"`
	LastMovementAt *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM.
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zero-balance projection for a key.
func NewStockLevel(companyID, itemID, warehouseID uuid.UUID, bin string) (*StockLevel, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &StockLevel{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ItemID:               itemID,
		WarehouseID:          warehouseID,
		Bin:                  bin,
		Quantity:             decimal.Zero,
		AvgCost:              decimal.Zero,
	}, nil
}

// MatchesKey returns true if the movement belongs to this projection's key.
func (l *StockLevel) MatchesKey(m *StockMovement) bool {
	return l.ItemID == m.ItemID && l.WarehouseID == m.WarehouseID && l.Bin == m.Bin
}

// NextSequence returns the sequence number the next movement for this key
// must carry.
func (l *StockLevel) NextSequence() int64 {
	return l.MovementCount + 1
}

// ApplyMovement applies one movement to the running balance. It asserts that
// the movement was computed against the projection's current quantity; a
// mismatch means a lost update or out-of-order application and surfaces as a
// concurrency conflict so the caller can retry the whole posting.
func (l *StockLevel) ApplyMovement(m *StockMovement) error {
	if !l.MatchesKey(m) {
		return shared.NewInvariantViolation("MOVEMENT_KEY_MISMATCH",
			"Movement does not belong to this stock level key")
	}
	if !m.QuantityBefore.Equal(l.Quantity) {
		return shared.NewConcurrencyConflict("STALE_PROJECTION",
			"Movement quantity-before does not match the current projection balance")
	}
	if m.Sequence != l.NextSequence() {
		return shared.NewConcurrencyConflict("OUT_OF_ORDER_MOVEMENT",
			"Movement applied out of order for this stock level key")
	}

	oldQty := l.Quantity
	l.Quantity = m.QuantityAfter

	// Weighted-average cost only moves on inbound movements; issues leave it
	// unchanged. Other cost methods keep the last inbound unit cost for the
	// total-value estimate.
	if m.MovementType.IsInbound() {
		if l.Quantity.IsPositive() {
			if m.CostMethod == catalog.ValuationWeightedAverage.String() && oldQty.IsPositive() {
				totalValue := oldQty.Mul(l.AvgCost).Add(m.Quantity.Mul(m.UnitCost))
				l.AvgCost = totalValue.Div(l.Quantity).Round(4)
			} else if oldQty.Sign() <= 0 {
				l.AvgCost = m.UnitCost
			} else if m.CostMethod != catalog.ValuationWeightedAverage.String() {
				l.AvgCost = m.UnitCost
			}
		}
	}

	l.MovementCount = m.Sequence
	id := m.ID
	at := m.MovementDate
	l.LastMovementID = &id
	l.LastMovementAt = &at
	l.Touch()
	l.IncrementVersion()

	return nil
}

// TotalValue returns the balance valued at the running average cost.
func (l *StockLevel) TotalValue() decimal.Decimal {
	return l.Quantity.Mul(l.AvgCost)
}

// RebuildStockLevel replays all movements for a key from zero, in sequence
// order, and returns the reconstructed projection. This is the correctness
// backstop: the result must equal the live projection exactly.
func RebuildStockLevel(companyID, itemID, warehouseID uuid.UUID, bin string, movements []StockMovement) (*StockLevel, error) {
	level, err := NewStockLevel(companyID, itemID, warehouseID, bin)
	if err != nil {
		return nil, err
	}

	ordered := make([]StockMovement, len(movements))
	copy(ordered, movements)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	for i := range ordered {
		if err := level.ApplyMovement(&ordered[i]); err != nil {
			return nil, err
		}
	}
	return level, nil
}
