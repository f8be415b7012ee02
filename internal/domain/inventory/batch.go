package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// BatchMovementKind names the batch counter a ledger posting mutates.
type BatchMovementKind string

const (
	BatchMovementReceive  BatchMovementKind = "RECEIVE"
	BatchMovementTransfer BatchMovementKind = "TRANSFER"
	BatchMovementConsume  BatchMovementKind = "CONSUME"
	BatchMovementDispatch BatchMovementKind = "DISPATCH"
	BatchMovementReturn   BatchMovementKind = "RETURN"
	BatchMovementScrap    BatchMovementKind = "SCRAP"
)

// IsValid returns true if the kind names a known batch counter.
func (k BatchMovementKind) IsValid() bool {
	switch k {
	case BatchMovementReceive, BatchMovementTransfer, BatchMovementConsume,
		BatchMovementDispatch, BatchMovementReturn, BatchMovementScrap:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k BatchMovementKind) String() string {
	return string(k)
}

// Batch is a traceable sub-lot of an item's stock with its own sub-quantity
// accounting. Counters are mutated only by ledger postings referencing the
// batch; batches are never deleted, only disabled.
//
// Quantity conservation holds after every mutation:
//
//	received + returned == transferred + consumed + dispatched + scrapped + on-hand
//
// with all counters and the derived on-hand (EffectiveQuantity) non-negative.
// When the batch is fully accounted for (on-hand zero) this degenerates to
// received == transferred + consumed + dispatched + scrapped - returned.
type Batch struct {
	shared.CompanyAggregateRoot
	ItemID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_item_number,priority:1"`
	BatchNumber          string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_batch_item_number,priority:2"`
	ManufacturingDate    *time.Time      `gorm:"type:date"`
	ExpiryDate           *time.Time      `gorm:"type:date"`
	WarrantyExpiry       *time.Time      `gorm:"type:date"`
	SupplierReference    string          `gorm:"type:varchar(100)"`
	RetainSampleQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetainSampleLocation string          `gorm:"type:varchar(100)"`
	Received             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Transferred          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Consumed             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Dispatched           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Returned             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Scrapped             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Disabled             bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM.
func (Batch) TableName() string {
	return "batches"
}

// NewBatch creates a batch for an item with an optional initial received
// quantity.
func NewBatch(
	companyID, itemID uuid.UUID,
	batchNumber string,
	initialQuantity decimal.Decimal,
	manufacturingDate, expiryDate *time.Time,
) (*Batch, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewValidationError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if initialQuantity.IsNegative() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	if manufacturingDate != nil && expiryDate != nil && expiryDate.Before(*manufacturingDate) {
		return nil, shared.NewValidationError("INVALID_DATES", "Expiry date cannot precede manufacturing date")
	}

	batch := &Batch{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ItemID:               itemID,
		BatchNumber:          batchNumber,
		ManufacturingDate:    manufacturingDate,
		ExpiryDate:           expiryDate,
		Received:             initialQuantity,
		Transferred:          decimal.Zero,
		Consumed:             decimal.Zero,
		Dispatched:           decimal.Zero,
		Returned:             decimal.Zero,
		Scrapped:             decimal.Zero,
	}

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// SetWarrantyExpiry records the warranty expiry date.
func (b *Batch) SetWarrantyExpiry(date *time.Time) {
	b.WarrantyExpiry = date
	b.Touch()
}

// SetSupplierReference records the supplier document reference.
func (b *Batch) SetSupplierReference(ref string) {
	b.SupplierReference = ref
	b.Touch()
}

// SetRetainSample records the retained-sample quantity and its storage location.
func (b *Batch) SetRetainSample(quantity decimal.Decimal, location string) error {
	if quantity.IsNegative() {
		return shared.NewValidationError("INVALID_QUANTITY", "Retain sample quantity cannot be negative")
	}
	b.RetainSampleQuantity = quantity
	b.RetainSampleLocation = location
	b.Touch()
	return nil
}

// EffectiveQuantity returns the on-hand quantity of the batch:
// received - (transferred + consumed + dispatched + scrapped) + returned.
func (b *Batch) EffectiveQuantity() decimal.Decimal {
	out := b.Transferred.Add(b.Consumed).Add(b.Dispatched).Add(b.Scrapped)
	return b.Received.Sub(out).Add(b.Returned)
}

// outboundTotal is the sum of all quantity that has left the batch.
func (b *Batch) outboundTotal() decimal.Decimal {
	return b.Transferred.Add(b.Consumed).Add(b.Dispatched).Add(b.Scrapped)
}

// ApplyMovement mutates the counter matching the kind and re-asserts the
// conservation invariant. Movements that would drive a counter or the
// on-hand quantity negative are rejected with an invariant violation.
func (b *Batch) ApplyMovement(kind BatchMovementKind, quantity decimal.Decimal) error {
	if b.Disabled {
		return shared.NewInvalidStateError("BATCH_DISABLED", "Cannot apply movements to a disabled batch")
	}
	if !kind.IsValid() {
		return shared.NewValidationError("INVALID_MOVEMENT_KIND", "Unknown batch movement kind")
	}
	if !quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	switch kind {
	case BatchMovementReceive:
		b.Received = b.Received.Add(quantity)
	case BatchMovementTransfer:
		b.Transferred = b.Transferred.Add(quantity)
	case BatchMovementConsume:
		b.Consumed = b.Consumed.Add(quantity)
	case BatchMovementDispatch:
		b.Dispatched = b.Dispatched.Add(quantity)
	case BatchMovementReturn:
		b.Returned = b.Returned.Add(quantity)
	case BatchMovementScrap:
		b.Scrapped = b.Scrapped.Add(quantity)
	}

	if err := b.checkConservation(); err != nil {
		b.revert(kind, quantity)
		return err
	}

	b.Touch()
	b.IncrementVersion()

	return nil
}

// revert undoes a counter mutation after a failed conservation check so the
// aggregate is left exactly as it was.
func (b *Batch) revert(kind BatchMovementKind, quantity decimal.Decimal) {
	switch kind {
	case BatchMovementReceive:
		b.Received = b.Received.Sub(quantity)
	case BatchMovementTransfer:
		b.Transferred = b.Transferred.Sub(quantity)
	case BatchMovementConsume:
		b.Consumed = b.Consumed.Sub(quantity)
	case BatchMovementDispatch:
		b.Dispatched = b.Dispatched.Sub(quantity)
	case BatchMovementReturn:
		b.Returned = b.Returned.Sub(quantity)
	case BatchMovementScrap:
		b.Scrapped = b.Scrapped.Sub(quantity)
	}
}

// checkConservation asserts all counters are non-negative, the on-hand
// quantity is non-negative, and no more has been returned than ever went out.
func (b *Batch) checkConservation() error {
	for _, c := range []decimal.Decimal{b.Received, b.Transferred, b.Consumed, b.Dispatched, b.Returned, b.Scrapped} {
		if c.IsNegative() {
			return shared.NewInvariantViolation("BATCH_COUNTER_NEGATIVE", "Batch counter cannot be negative")
		}
	}
	if b.EffectiveQuantity().IsNegative() {
		return shared.NewInvariantViolation("BATCH_CONSERVATION",
			"Batch movement would exceed on-hand quantity: received + returned must cover transferred + consumed + dispatched + scrapped")
	}
	if b.Returned.GreaterThan(b.outboundTotal()) {
		return shared.NewInvariantViolation("BATCH_RETURN_EXCEEDS_OUTBOUND",
			"Cannot return more than has left the batch")
	}
	return nil
}

// IsExpired returns true if the batch has passed its expiry date.
func (b *Batch) IsExpired() bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now())
}

// WillExpireWithin returns true if the batch expires within the given duration.
func (b *Batch) WillExpireWithin(d time.Duration) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now().Add(d))
}

// HasStock returns true if the batch has on-hand quantity.
func (b *Batch) HasStock() bool {
	return b.EffectiveQuantity().IsPositive()
}

// Disable marks the batch unusable for future movements. Idempotent.
func (b *Batch) Disable() {
	if b.Disabled {
		return
	}
	b.Disabled = true
	b.Touch()
	b.IncrementVersion()
}
