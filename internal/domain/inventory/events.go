package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeBatch      = "Batch"
	AggregateTypeStockEntry = "StockEntry"
	AggregateTypeStockLevel = "StockLevel"
)

// Event type constants
const (
	EventTypeBatchCreated      = "BatchCreated"
	EventTypeStockEntryPosted  = "StockEntryPosted"
	EventTypeStockReceived     = "StockReceived"
	EventTypeStockIssued       = "StockIssued"
	EventTypeStockLevelLow     = "StockLevelLow"
	EventTypeStockLevelRebuilt = "StockLevelRebuilt"
)

// BatchCreatedEvent is raised when a batch is first registered.
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID          uuid.UUID       `json:"item_id"`
	BatchNumber     string          `json:"batch_number"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
}

// NewBatchCreatedEvent creates a new BatchCreatedEvent.
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, AggregateTypeBatch, batch.ID, batch.CompanyID),
		ItemID:          batch.ItemID,
		BatchNumber:     batch.BatchNumber,
		InitialQuantity: batch.Received,
		ExpiryDate:      batch.ExpiryDate,
	}
}

// StockEntryPostedEvent is raised once per successful posting and carries the
// entry totals for downstream accounting.
type StockEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryNumber   string          `json:"entry_number"`
	EntryDate     time.Time       `json:"entry_date"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LineCount     int             `json:"line_count"`
	PostedBy      uuid.UUID       `json:"posted_by"`
}

// NewStockEntryPostedEvent creates a new StockEntryPostedEvent.
func NewStockEntryPostedEvent(entry *StockEntry, postedBy uuid.UUID) *StockEntryPostedEvent {
	return &StockEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockEntryPosted, AggregateTypeStockEntry, entry.ID, entry.CompanyID),
		EntryNumber:     entry.EntryNumber,
		EntryDate:       entry.EntryDate,
		TotalQuantity:   entry.TotalQuantity(),
		TotalValue:      entry.TotalValue(),
		LineCount:       len(entry.Details),
		PostedBy:        postedBy,
	}
}

// StockReceivedEvent is raised per inbound detail line at posting time.
// It carries denormalized item data so consumers avoid synchronous lookups.
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	ItemSKU     string          `json:"item_sku"`
	ItemName    string          `json:"item_name"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Bin         string          `json:"bin,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	BatchNumber string          `json:"batch_number,omitempty"`
	SerialNo    string          `json:"serial_no,omitempty"`
	EntryNumber string          `json:"entry_number"`
	Reference   string          `json:"reference,omitempty"`
}

// NewStockReceivedEvent creates a StockReceivedEvent from a posted inbound movement.
func NewStockReceivedEvent(entry *StockEntry, item ItemSnapshot, m *StockMovement, batchNumber string) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockEntry, entry.ID, entry.CompanyID),
		ItemID:          m.ItemID,
		ItemSKU:         item.SKU,
		ItemName:        item.Name,
		WarehouseID:     m.WarehouseID,
		Bin:             m.Bin,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		BatchNumber:     batchNumber,
		SerialNo:        m.SerialNo,
		EntryNumber:     entry.EntryNumber,
		Reference:       entry.ReferenceID,
	}
}

// StockIssuedEvent is raised per outbound detail line at posting time.
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	ItemSKU     string          `json:"item_sku"`
	ItemName    string          `json:"item_name"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Bin         string          `json:"bin,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	BatchNumber string          `json:"batch_number,omitempty"`
	EntryNumber string          `json:"entry_number"`
	Reference   string          `json:"reference,omitempty"`
}

// NewStockIssuedEvent creates a StockIssuedEvent from a posted outbound movement.
func NewStockIssuedEvent(entry *StockEntry, item ItemSnapshot, m *StockMovement, batchNumber string) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, AggregateTypeStockEntry, entry.ID, entry.CompanyID),
		ItemID:          m.ItemID,
		ItemSKU:         item.SKU,
		ItemName:        item.Name,
		WarehouseID:     m.WarehouseID,
		Bin:             m.Bin,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		BatchNumber:     batchNumber,
		EntryNumber:     entry.EntryNumber,
		Reference:       entry.ReferenceID,
	}
}

// ItemSnapshot carries the denormalized item fields events embed.
type ItemSnapshot struct {
	SKU  string
	Name string
}

// StockLevelLowEvent is raised when a posting drives a stock level below the
// item's reorder threshold.
type StockLevelLowEvent struct {
	shared.BaseDomainEvent
	ItemID          uuid.UUID       `json:"item_id"`
	ItemSKU         string          `json:"item_sku"`
	ItemName        string          `json:"item_name"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	Bin             string          `json:"bin,omitempty"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	ValueAtRisk     decimal.Decimal `json:"value_at_risk"`
}

// NewStockLevelLowEvent creates a StockLevelLowEvent for an item whose balance
// dropped below its reorder level.
func NewStockLevelLowEvent(item ItemSnapshot, reorderLevel, reorderQuantity decimal.Decimal, level *StockLevel) *StockLevelLowEvent {
	return &StockLevelLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelLow, AggregateTypeStockLevel, level.ID, level.CompanyID),
		ItemID:          level.ItemID,
		ItemSKU:         item.SKU,
		ItemName:        item.Name,
		WarehouseID:     level.WarehouseID,
		Bin:             level.Bin,
		CurrentQuantity: level.Quantity,
		ReorderLevel:    reorderLevel,
		ReorderQuantity: reorderQuantity,
		ValueAtRisk:     level.TotalValue(),
	}
}

// StockLevelRebuiltEvent is raised when a projection is rebuilt by replay,
// recording whether drift was found and repaired.
type StockLevelRebuiltEvent struct {
	shared.BaseDomainEvent
	ItemID           uuid.UUID       `json:"item_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	Bin              string          `json:"bin,omitempty"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	RebuiltQuantity  decimal.Decimal `json:"rebuilt_quantity"`
	DriftDetected    bool            `json:"drift_detected"`
}

// NewStockLevelRebuiltEvent creates a StockLevelRebuiltEvent.
func NewStockLevelRebuiltEvent(level *StockLevel, previous, rebuilt decimal.Decimal, drift bool) *StockLevelRebuiltEvent {
	return &StockLevelRebuiltEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockLevelRebuilt, AggregateTypeStockLevel, level.ID, level.CompanyID),
		ItemID:           level.ItemID,
		WarehouseID:      level.WarehouseID,
		Bin:              level.Bin,
		PreviousQuantity: previous,
		RebuiltQuantity:  rebuilt,
		DriftDetected:    drift,
	}
}
