package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// CreateStockEntryRequest represents a request to open a draft stock entry.
type CreateStockEntryRequest struct {
	EntryDate     *time.Time         `json:"entry_date"`
	ReferenceType string             `json:"reference_type"`
	ReferenceID   string             `json:"reference_id"`
	Notes         string             `json:"notes"`
	Details       []DetailRequest    `json:"details"`
	Costs         []AdditionalCostIn `json:"additional_costs"`
}

// DetailRequest represents one detail line of a stock entry.
type DetailRequest struct {
	ItemID        uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Bin           string          `json:"bin"`
	MovementType  string          `json:"movement_type" binding:"required,oneof=RECEIPT ISSUE TRANSFER_IN TRANSFER_OUT ADJUSTMENT_IN ADJUSTMENT_OUT"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Rate          decimal.Decimal `json:"rate"`
	BatchID       *uuid.UUID      `json:"batch_id"`
	BatchMovement string          `json:"batch_movement" binding:"omitempty,oneof=RECEIVE TRANSFER CONSUME DISPATCH RETURN SCRAP"`
	SerialNo      string          `json:"serial_no"`
	Remarks       string          `json:"remarks"`
	AllowNegative bool            `json:"allow_negative"`
}

// AdditionalCostIn represents a landed-cost line on a stock entry.
type AdditionalCostIn struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateStockEntryRequest updates draft entry metadata.
type UpdateStockEntryRequest struct {
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	Notes         string `json:"notes"`
}

// RejectStockEntryRequest rejects a draft entry with a reason.
type RejectStockEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SubmitStockEntryRequest posts a draft entry.
type SubmitStockEntryRequest struct {
	PostedBy uuid.UUID `json:"posted_by" binding:"required"`
}

// ReceiveStockRequest is the one-shot convenience command: it creates a
// receipt-only entry and posts it immediately.
type ReceiveStockRequest struct {
	ItemID        uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Bin           string          `json:"bin"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Rate          decimal.Decimal `json:"rate"`
	BatchNumber   string          `json:"batch_number"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	PostedBy      uuid.UUID       `json:"posted_by" binding:"required"`
}

// StockEntryResponse represents a stock entry in API responses.
type StockEntryResponse struct {
	ID            uuid.UUID                `json:"id"`
	CompanyID     uuid.UUID                `json:"company_id"`
	EntryNumber   string                   `json:"entry_number"`
	EntryDate     time.Time                `json:"entry_date"`
	ReferenceType string                   `json:"reference_type,omitempty"`
	ReferenceID   string                   `json:"reference_id,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
	State         string                   `json:"state"`
	PostedAt      *time.Time               `json:"posted_at,omitempty"`
	PostedBy      *uuid.UUID               `json:"posted_by,omitempty"`
	TotalQuantity decimal.Decimal          `json:"total_quantity"`
	TotalValue    decimal.Decimal          `json:"total_value"`
	Details       []DetailResponse         `json:"details"`
	Costs         []AdditionalCostResponse `json:"additional_costs"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	Version       int                      `json:"version"`
}

// DetailResponse represents one entry detail line.
type DetailResponse struct {
	ID            uuid.UUID       `json:"id"`
	LineNo        int             `json:"line_no"`
	ItemID        uuid.UUID       `json:"item_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	Bin           string          `json:"bin,omitempty"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	BatchID       *uuid.UUID      `json:"batch_id,omitempty"`
	SerialNo      string          `json:"serial_no,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	AllowNegative bool            `json:"allow_negative"`
}

// AdditionalCostResponse represents one landed-cost line.
type AdditionalCostResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// StockLevelResponse represents a location balance.
type StockLevelResponse struct {
	ID             uuid.UUID       `json:"id"`
	ItemID         uuid.UUID       `json:"item_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Bin            string          `json:"bin,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	AvgCost        decimal.Decimal `json:"avg_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	MovementCount  int64           `json:"movement_count"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MovementResponse represents one ledger fact.
type MovementResponse struct {
	ID                     uuid.UUID       `json:"id"`
	EntryNumber            string          `json:"entry_number"`
	ItemID                 uuid.UUID       `json:"item_id"`
	WarehouseID            uuid.UUID       `json:"warehouse_id"`
	Bin                    string          `json:"bin,omitempty"`
	MovementType           string          `json:"movement_type"`
	Quantity               decimal.Decimal `json:"quantity"`
	QuantityBefore         decimal.Decimal `json:"quantity_before"`
	QuantityAfter          decimal.Decimal `json:"quantity_after"`
	UnitCost               decimal.Decimal `json:"unit_cost"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	CostMethod             string          `json:"cost_method"`
	BatchID                *uuid.UUID      `json:"batch_id,omitempty"`
	SerialNo               string          `json:"serial_no,omitempty"`
	RequiresReconciliation bool            `json:"requires_reconciliation"`
	Sequence               int64           `json:"sequence"`
	MovementDate           time.Time       `json:"movement_date"`
}

// CreateBatchRequest represents a request to register a batch.
type CreateBatchRequest struct {
	ItemID            uuid.UUID       `json:"item_id" binding:"required"`
	BatchNumber       string          `json:"batch_number" binding:"required"`
	InitialQuantity   decimal.Decimal `json:"initial_quantity"`
	ManufacturingDate *time.Time      `json:"manufacturing_date"`
	ExpiryDate        *time.Time      `json:"expiry_date"`
	WarrantyExpiry    *time.Time      `json:"warranty_expiry"`
	SupplierReference string          `json:"supplier_reference"`
}

// SetRetainSampleRequest records the retained-sample metadata on a batch.
type SetRetainSampleRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Location string          `json:"location" binding:"required"`
}

// BatchResponse represents a batch in API responses.
type BatchResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ItemID               uuid.UUID       `json:"item_id"`
	BatchNumber          string          `json:"batch_number"`
	ManufacturingDate    *time.Time      `json:"manufacturing_date,omitempty"`
	ExpiryDate           *time.Time      `json:"expiry_date,omitempty"`
	WarrantyExpiry       *time.Time      `json:"warranty_expiry,omitempty"`
	SupplierReference    string          `json:"supplier_reference,omitempty"`
	RetainSampleQuantity decimal.Decimal `json:"retain_sample_quantity"`
	RetainSampleLocation string          `json:"retain_sample_location,omitempty"`
	Received             decimal.Decimal `json:"received"`
	Transferred          decimal.Decimal `json:"transferred"`
	Consumed             decimal.Decimal `json:"consumed"`
	Dispatched           decimal.Decimal `json:"dispatched"`
	Returned             decimal.Decimal `json:"returned"`
	Scrapped             decimal.Decimal `json:"scrapped"`
	EffectiveQuantity    decimal.Decimal `json:"effective_quantity"`
	Expired              bool            `json:"expired"`
	Disabled             bool            `json:"disabled"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// RebuildResponse reports the outcome of a projection rebuild.
type RebuildResponse struct {
	ItemID           uuid.UUID       `json:"item_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	Bin              string          `json:"bin,omitempty"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	RebuiltQuantity  decimal.Decimal `json:"rebuilt_quantity"`
	MovementsReplayed int64          `json:"movements_replayed"`
	DriftDetected    bool            `json:"drift_detected"`
	Repaired         bool            `json:"repaired"`
}

// ToStockEntryResponse converts a domain entry to its response shape.
func ToStockEntryResponse(e *inventory.StockEntry) *StockEntryResponse {
	resp := &StockEntryResponse{
		ID:            e.ID,
		CompanyID:     e.CompanyID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     e.EntryDate,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Notes:         e.Notes,
		State:         e.State.String(),
		PostedAt:      e.PostedAt,
		PostedBy:      e.PostedBy,
		TotalQuantity: e.TotalQuantity(),
		TotalValue:    e.TotalValue(),
		Details:       make([]DetailResponse, 0, len(e.Details)),
		Costs:         make([]AdditionalCostResponse, 0, len(e.AdditionalCosts)),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
	for i := range e.Details {
		d := &e.Details[i]
		resp.Details = append(resp.Details, DetailResponse{
			ID:            d.ID,
			LineNo:        d.LineNo,
			ItemID:        d.ItemID,
			WarehouseID:   d.WarehouseID,
			Bin:           d.Bin,
			MovementType:  d.MovementType.String(),
			Quantity:      d.Quantity,
			Rate:          d.Rate,
			Amount:        d.Amount(),
			BatchID:       d.BatchID,
			SerialNo:      d.SerialNo,
			Remarks:       d.Remarks,
			AllowNegative: d.AllowNegative,
		})
	}
	for i := range e.AdditionalCosts {
		c := &e.AdditionalCosts[i]
		resp.Costs = append(resp.Costs, AdditionalCostResponse{
			ID:          c.ID,
			Description: c.Description,
			Amount:      c.Amount,
		})
	}
	return resp
}

// ToStockLevelResponse converts a projection to its response shape.
func ToStockLevelResponse(l *inventory.StockLevel) *StockLevelResponse {
	return &StockLevelResponse{
		ID:             l.ID,
		ItemID:         l.ItemID,
		WarehouseID:    l.WarehouseID,
		Bin:            l.Bin,
		Quantity:       l.Quantity,
		AvgCost:        l.AvgCost,
		TotalValue:     l.TotalValue(),
		MovementCount:  l.MovementCount,
		LastMovementAt: l.LastMovementAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// ToMovementResponse converts a ledger fact to its response shape.
func ToMovementResponse(m *inventory.StockMovement) *MovementResponse {
	return &MovementResponse{
		ID:                     m.ID,
		EntryNumber:            m.EntryNumber,
		ItemID:                 m.ItemID,
		WarehouseID:            m.WarehouseID,
		Bin:                    m.Bin,
		MovementType:           m.MovementType.String(),
		Quantity:               m.Quantity,
		QuantityBefore:         m.QuantityBefore,
		QuantityAfter:          m.QuantityAfter,
		UnitCost:               m.UnitCost,
		TotalCost:              m.TotalCost,
		CostMethod:             m.CostMethod,
		BatchID:                m.BatchID,
		SerialNo:               m.SerialNo,
		RequiresReconciliation: m.RequiresReconciliation,
		Sequence:               m.Sequence,
		MovementDate:           m.MovementDate,
	}
}

// ToBatchResponse converts a batch to its response shape.
func ToBatchResponse(b *inventory.Batch) *BatchResponse {
	return &BatchResponse{
		ID:                   b.ID,
		ItemID:               b.ItemID,
		BatchNumber:          b.BatchNumber,
		ManufacturingDate:    b.ManufacturingDate,
		ExpiryDate:           b.ExpiryDate,
		WarrantyExpiry:       b.WarrantyExpiry,
		SupplierReference:    b.SupplierReference,
		RetainSampleQuantity: b.RetainSampleQuantity,
		RetainSampleLocation: b.RetainSampleLocation,
		Received:             b.Received,
		Transferred:          b.Transferred,
		Consumed:             b.Consumed,
		Dispatched:           b.Dispatched,
		Returned:             b.Returned,
		Scrapped:             b.Scrapped,
		EffectiveQuantity:    b.EffectiveQuantity(),
		Expired:              b.IsExpired(),
		Disabled:             b.Disabled,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
