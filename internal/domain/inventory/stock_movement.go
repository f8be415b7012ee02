package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// MovementType classifies a stock movement at a single location. A logical
// warehouse-to-warehouse transfer is expressed as a TransferOut line at the
// source plus a TransferIn line at the target, so every detail line maps to
// exactly one movement fact.
type MovementType string

const (
	MovementReceipt       MovementType = "RECEIPT"
	MovementIssue         MovementType = "ISSUE"
	MovementTransferIn    MovementType = "TRANSFER_IN"
	MovementTransferOut   MovementType = "TRANSFER_OUT"
	MovementAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut MovementType = "ADJUSTMENT_OUT"
)

// IsValid returns true if the movement type is known.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt, MovementIssue, MovementTransferIn,
		MovementTransferOut, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// IsInbound returns true if this movement type increases on-hand quantity.
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementReceipt, MovementTransferIn, MovementAdjustmentIn:
		return true
	}
	return false
}

// IsOutbound returns true if this movement type decreases on-hand quantity.
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementIssue, MovementTransferOut, MovementAdjustmentOut:
		return true
	}
	return false
}

// String returns the string representation of the movement type.
func (t MovementType) String() string {
	return string(t)
}

// DefaultBatchMovement maps a movement type to the batch counter it mutates
// when the detail line does not specify one explicitly.
func (t MovementType) DefaultBatchMovement() BatchMovementKind {
	switch t {
	case MovementReceipt, MovementTransferIn, MovementAdjustmentIn:
		return BatchMovementReceive
	case MovementTransferOut:
		return BatchMovementTransfer
	case MovementAdjustmentOut:
		return BatchMovementScrap
	default:
		return BatchMovementConsume
	}
}

// StockMovement is an immutable, append-only ledger fact recording one
// quantity change at one location with before/after balances. Movements are
// never updated or deleted; corrections are new movements.
type StockMovement struct {
	shared.BaseEntity
	CompanyID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_key,priority:1"`
	StockEntryID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryNumber            string          `gorm:"type:varchar(32);not null"`
	DetailID               uuid.UUID       `gorm:"type:uuid;not null"`
	ItemID                 uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_key,priority:2"`
	WarehouseID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_key,priority:3"`
	Bin                    string          `gorm:"type:varchar(50);not null;index:idx_movement_key,priority:4"`
	MovementType           MovementType    `gorm:"type:varchar(20);not null"`
	Quantity               decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always positive; direction via type
	QuantityBefore         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostMethod             string          `gorm:"type:varchar(20);not null"`
	BatchID                *uuid.UUID      `gorm:"type:uuid;index"`
	SerialNo               string          `gorm:"type:varchar(64)"`
	RequiresReconciliation bool            `gorm:"not null;default:false"`
	Sequence               int64           `gorm:"not null;index:idx_movement_key,priority:5"` // per-key apply order
	MovementDate           time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM.
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement fact. Quantity must be positive and the
// before/after balances must differ by exactly the signed quantity.
func NewStockMovement(
	companyID, stockEntryID uuid.UUID,
	entryNumber string,
	detailID, itemID, warehouseID uuid.UUID,
	bin string,
	movementType MovementType,
	quantity, quantityBefore, unitCost decimal.Decimal,
	costMethod string,
	sequence int64,
) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Unit cost cannot be negative")
	}

	after := quantityBefore.Add(quantity)
	if movementType.IsOutbound() {
		after = quantityBefore.Sub(quantity)
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		CompanyID:      companyID,
		StockEntryID:   stockEntryID,
		EntryNumber:    entryNumber,
		DetailID:       detailID,
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		Bin:            bin,
		MovementType:   movementType,
		Quantity:       quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  after,
		UnitCost:       unitCost,
		TotalCost:      quantity.Mul(unitCost),
		CostMethod:     costMethod,
		Sequence:       sequence,
		MovementDate:   time.Now(),
	}, nil
}

// WithBatch attaches the batch reference.
func (m *StockMovement) WithBatch(batchID uuid.UUID) *StockMovement {
	m.BatchID = &batchID
	return m
}

// WithSerialNo attaches the serial reference.
func (m *StockMovement) WithSerialNo(serial string) *StockMovement {
	m.SerialNo = serial
	return m
}

// FlagForReconciliation marks a movement posted under the negative-stock
// override for later reconciliation.
func (m *StockMovement) FlagForReconciliation() *StockMovement {
	m.RequiresReconciliation = true
	return m
}

// SignedQuantity returns the quantity with direction applied.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType.IsOutbound() {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
