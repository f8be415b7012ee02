package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// EntryState is the lifecycle state of a stock entry.
// Draft entries are mutable; Posted and Rejected are terminal.
type EntryState string

const (
	EntryStateDraft    EntryState = "DRAFT"
	EntryStatePosted   EntryState = "POSTED"
	EntryStateRejected EntryState = "REJECTED"
)

// String returns the string representation of the state.
func (s EntryState) String() string {
	return string(s)
}

// StockEntry is the ledger transaction aggregate. A draft collects detail
// lines and additional costs, then posts as one atomic, irreversible unit.
// Posted entries are immutable; corrections happen via new offsetting entries.
type StockEntry struct {
	shared.CompanyAggregateRoot
	EntryNumber   string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_entry_company_number,priority:2"`
	EntryDate     time.Time  `gorm:"type:date;not null"`
	ReferenceType string     `gorm:"type:varchar(50)"`
	ReferenceID   string     `gorm:"type:varchar(64)"`
	Notes         string     `gorm:"type:text"`
	State         EntryState `gorm:"type:varchar(16);not null;default:'DRAFT'"`
	PostedAt      *time.Time `gorm:"type:timestamptz"`
	PostedBy      *uuid.UUID `gorm:"type:uuid"`

	Details         []StockEntryDetail         `gorm:"foreignKey:StockEntryID;references:ID"`
	AdditionalCosts []StockEntryAdditionalCost `gorm:"foreignKey:StockEntryID;references:ID"`
}

// TableName returns the table name for GORM.
func (StockEntry) TableName() string {
	return "stock_entries"
}

// StockEntryDetail is one line of a stock entry: an item movement at a single
// warehouse/bin location with a quantity and a rate.
type StockEntryDetail struct {
	shared.BaseEntity
	StockEntryID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	LineNo        int               `gorm:"not null"`
	ItemID        uuid.UUID         `gorm:"type:uuid;not null"`
	WarehouseID   uuid.UUID         `gorm:"type:uuid;not null"`
	Bin           string            `gorm:"type:varchar(50)"`
	MovementType  MovementType      `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Rate          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	BatchID       *uuid.UUID        `gorm:"type:uuid"`
	BatchMovement BatchMovementKind `gorm:"type:varchar(16)"` // empty means derive from movement type
	SerialNo      string            `gorm:"type:varchar(64)"`
	Remarks       string            `gorm:"type:varchar(255)"`
	AllowNegative bool              `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM.
func (StockEntryDetail) TableName() string {
	return "stock_entry_details"
}

// Amount returns the line value (quantity x rate).
func (d *StockEntryDetail) Amount() decimal.Decimal {
	return d.Quantity.Mul(d.Rate)
}

// EffectiveBatchMovement returns the batch counter kind for this line,
// deriving it from the movement type when not set explicitly.
func (d *StockEntryDetail) EffectiveBatchMovement() BatchMovementKind {
	if d.BatchMovement != "" {
		return d.BatchMovement
	}
	return d.MovementType.DefaultBatchMovement()
}

// StockEntryAdditionalCost is a landed-cost line (freight, duty, etc.)
// contributing to the entry's total value.
type StockEntryAdditionalCost struct {
	shared.BaseEntity
	StockEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description  string          `gorm:"type:varchar(200);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM.
func (StockEntryAdditionalCost) TableName() string {
	return "stock_entry_additional_costs"
}

// NewStockEntry creates a draft stock entry.
func NewStockEntry(companyID uuid.UUID, entryNumber string, entryDate time.Time) (*StockEntry, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if entryNumber == "" {
		return nil, shared.NewValidationError("INVALID_ENTRY_NUMBER", "Entry number cannot be empty")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	return &StockEntry{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		EntryNumber:          entryNumber,
		EntryDate:            entryDate,
		State:                EntryStateDraft,
		Details:              make([]StockEntryDetail, 0),
		AdditionalCosts:      make([]StockEntryAdditionalCost, 0),
	}, nil
}

// ensureDraft guards every mutating operation: posted and rejected entries
// are immutable.
func (e *StockEntry) ensureDraft() error {
	if e.State != EntryStateDraft {
		return shared.NewInvalidStateError("ENTRY_NOT_DRAFT",
			"Stock entry "+e.EntryNumber+" is "+e.State.String()+" and cannot be modified")
	}
	return nil
}

// IsDraft returns true while the entry can still be modified.
func (e *StockEntry) IsDraft() bool {
	return e.State == EntryStateDraft
}

// IsPosted returns true once the entry has been posted.
func (e *StockEntry) IsPosted() bool {
	return e.State == EntryStatePosted
}

// DetailLine describes a line to add to a draft entry.
type DetailLine struct {
	ItemID        uuid.UUID
	WarehouseID   uuid.UUID
	Bin           string
	MovementType  MovementType
	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	BatchID       *uuid.UUID
	BatchMovement BatchMovementKind
	SerialNo      string
	Remarks       string
	AllowNegative bool
}

// AddDetail appends a detail line to a draft entry.
func (e *StockEntry) AddDetail(line DetailLine) (*StockEntryDetail, error) {
	if err := e.ensureDraft(); err != nil {
		return nil, err
	}
	if line.ItemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Detail line must reference an item")
	}
	if line.WarehouseID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_WAREHOUSE", "Detail line must reference a warehouse")
	}
	if !line.MovementType.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if !line.Quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Detail quantity must be positive")
	}
	if line.Rate.IsNegative() {
		return nil, shared.NewValidationError("INVALID_RATE", "Detail rate cannot be negative")
	}
	if line.BatchMovement != "" && !line.BatchMovement.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_KIND", "Unknown batch movement kind")
	}
	if line.BatchMovement != "" && line.BatchID == nil {
		return nil, shared.NewValidationError("MISSING_BATCH", "Batch movement kind given without a batch reference")
	}

	detail := StockEntryDetail{
		BaseEntity:    shared.NewBaseEntity(),
		StockEntryID:  e.ID,
		LineNo:        len(e.Details) + 1,
		ItemID:        line.ItemID,
		WarehouseID:   line.WarehouseID,
		Bin:           line.Bin,
		MovementType:  line.MovementType,
		Quantity:      line.Quantity,
		Rate:          line.Rate,
		BatchID:       line.BatchID,
		BatchMovement: line.BatchMovement,
		SerialNo:      line.SerialNo,
		Remarks:       line.Remarks,
		AllowNegative: line.AllowNegative,
	}
	e.Details = append(e.Details, detail)
	e.Touch()
	e.IncrementVersion()

	return &e.Details[len(e.Details)-1], nil
}

// RemoveDetail removes a detail line from a draft entry and renumbers the rest.
func (e *StockEntry) RemoveDetail(detailID uuid.UUID) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	for i := range e.Details {
		if e.Details[i].ID == detailID {
			e.Details = append(e.Details[:i], e.Details[i+1:]...)
			for j := range e.Details {
				e.Details[j].LineNo = j + 1
			}
			e.Touch()
			e.IncrementVersion()
			return nil
		}
	}
	return shared.NewNotFoundError("DETAIL_NOT_FOUND", "Detail line not found on entry")
}

// AddAdditionalCost appends a landed-cost line to a draft entry.
func (e *StockEntry) AddAdditionalCost(description string, amount decimal.Decimal) (*StockEntryAdditionalCost, error) {
	if err := e.ensureDraft(); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Additional cost description cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Additional cost amount cannot be negative")
	}

	cost := StockEntryAdditionalCost{
		BaseEntity:   shared.NewBaseEntity(),
		StockEntryID: e.ID,
		Description:  description,
		Amount:       amount,
	}
	e.AdditionalCosts = append(e.AdditionalCosts, cost)
	e.Touch()
	e.IncrementVersion()

	return &e.AdditionalCosts[len(e.AdditionalCosts)-1], nil
}

// RemoveAdditionalCost removes a landed-cost line from a draft entry.
func (e *StockEntry) RemoveAdditionalCost(costID uuid.UUID) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	for i := range e.AdditionalCosts {
		if e.AdditionalCosts[i].ID == costID {
			e.AdditionalCosts = append(e.AdditionalCosts[:i], e.AdditionalCosts[i+1:]...)
			e.Touch()
			e.IncrementVersion()
			return nil
		}
	}
	return shared.NewNotFoundError("COST_NOT_FOUND", "Additional cost line not found on entry")
}

// Update edits the entry metadata. Draft only.
func (e *StockEntry) Update(referenceType, referenceID, notes string) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	e.ReferenceType = referenceType
	e.ReferenceID = referenceID
	e.Notes = notes
	e.Touch()
	e.IncrementVersion()
	return nil
}

// ValidateForPosting checks the postability rules: at least one detail line,
// every quantity positive, every rate non-negative.
func (e *StockEntry) ValidateForPosting() error {
	if e.State == EntryStatePosted {
		return shared.NewInvalidStateError("ALREADY_POSTED", "Stock entry "+e.EntryNumber+" is already posted")
	}
	if e.State == EntryStateRejected {
		return shared.NewInvalidStateError("ENTRY_REJECTED", "Stock entry "+e.EntryNumber+" has been rejected")
	}
	if len(e.Details) == 0 {
		return shared.NewValidationError("NO_DETAILS", "Stock entry has no detail lines")
	}
	for i := range e.Details {
		if !e.Details[i].Quantity.IsPositive() {
			return shared.NewValidationError("INVALID_QUANTITY", "Detail quantity must be positive")
		}
		if e.Details[i].Rate.IsNegative() {
			return shared.NewValidationError("INVALID_RATE", "Detail rate cannot be negative")
		}
	}
	return nil
}

// MarkPosted flips the entry to its terminal Posted state. Called only by the
// posting service after all movements have been applied.
func (e *StockEntry) MarkPosted(postedBy uuid.UUID) error {
	if err := e.ValidateForPosting(); err != nil {
		return err
	}
	now := time.Now()
	e.State = EntryStatePosted
	e.PostedAt = &now
	e.PostedBy = &postedBy
	e.Touch()
	e.IncrementVersion()
	return nil
}

// MarkAsFailed transitions a draft to the terminal Rejected state, recording
// the reason in the notes. Posted entries can never be marked failed.
func (e *StockEntry) MarkAsFailed(reason string) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Rejection reason is required")
	}

	e.State = EntryStateRejected
	if e.Notes != "" {
		e.Notes += "\n"
	}
	e.Notes += "Rejected: " + reason
	e.Touch()
	e.IncrementVersion()
	return nil
}

// TotalQuantity returns the sum of all detail quantities.
func (e *StockEntry) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for i := range e.Details {
		total = total.Add(e.Details[i].Quantity)
	}
	return total
}

// TotalValue returns the sum of all line values plus additional costs.
func (e *StockEntry) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for i := range e.Details {
		total = total.Add(e.Details[i].Amount())
	}
	for i := range e.AdditionalCosts {
		total = total.Add(e.AdditionalCosts[i].Amount)
	}
	return total
}
