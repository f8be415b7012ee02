package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is an immutable amount of stock expressed in a unit of measure.
// The ledger stores bare decimals; Quantity tags an amount with the owning
// item's unit wherever amounts are validated, compared or reported. Negative
// amounts are rejected at construction.
type Quantity struct {
	amount decimal.Decimal
	unit   string
}

// NewQuantity creates a Quantity. The amount must not be negative.
func NewQuantity(amount decimal.Decimal, unit string) (Quantity, error) {
	if amount.IsNegative() {
		return Quantity{}, errors.New("quantity cannot be negative")
	}
	return Quantity{amount: amount, unit: unit}, nil
}

// NewQuantityFromString creates a Quantity from a decimal string.
func NewQuantityFromString(amount, unit string) (Quantity, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q: %w", amount, err)
	}
	return NewQuantity(d, unit)
}

// ZeroQuantity returns a zero amount in the given unit.
func ZeroQuantity(unit string) Quantity {
	return Quantity{amount: decimal.Zero, unit: unit}
}

// Amount returns the decimal amount.
func (q Quantity) Amount() decimal.Decimal {
	return q.amount
}

// Unit returns the unit of measure.
func (q Quantity) Unit() string {
	return q.unit
}

// IsZero returns true if the amount is zero.
func (q Quantity) IsZero() bool {
	return q.amount.IsZero()
}

// IsPositive returns true if the amount is positive.
func (q Quantity) IsPositive() bool {
	return q.amount.IsPositive()
}

// Add returns the sum of both quantities. The units must match.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.unit != other.unit {
		return Quantity{}, fmt.Errorf("cannot add %s to %s", other.unit, q.unit)
	}
	return Quantity{amount: q.amount.Add(other.amount), unit: q.unit}, nil
}

// Subtract returns the difference. The units must match and the result must
// not be negative.
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	if q.unit != other.unit {
		return Quantity{}, fmt.Errorf("cannot subtract %s from %s", other.unit, q.unit)
	}
	result := q.amount.Sub(other.amount)
	if result.IsNegative() {
		return Quantity{}, errors.New("resulting quantity would be negative")
	}
	return Quantity{amount: result, unit: q.unit}, nil
}

// Covers returns true if this quantity is at least the required amount.
func (q Quantity) Covers(required Quantity) (bool, error) {
	if q.unit != required.unit {
		return false, fmt.Errorf("cannot compare %s with %s", q.unit, required.unit)
	}
	return q.amount.GreaterThanOrEqual(required.amount), nil
}

// Deficit returns how much is missing to cover the required amount, zero when
// nothing is missing.
func (q Quantity) Deficit(required Quantity) (Quantity, error) {
	if q.unit != required.unit {
		return Quantity{}, fmt.Errorf("cannot compare %s with %s", q.unit, required.unit)
	}
	if q.amount.GreaterThanOrEqual(required.amount) {
		return ZeroQuantity(q.unit), nil
	}
	return Quantity{amount: required.amount.Sub(q.amount), unit: q.unit}, nil
}

// Equals returns true when amount and unit both match.
func (q Quantity) Equals(other Quantity) bool {
	return q.unit == other.unit && q.amount.Equal(other.amount)
}

// String renders the quantity with its unit, e.g. "12.5 kg".
func (q Quantity) String() string {
	if q.unit == "" {
		return q.amount.String()
	}
	return fmt.Sprintf("%s %s", q.amount.String(), q.unit)
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount string `json:"amount"`
		Unit   string `json:"unit"`
	}{
		Amount: q.amount.String(),
		Unit:   q.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler, rejecting negative amounts.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount string `json:"amount"`
		Unit   string `json:"unit"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewQuantityFromString(v.Amount, v.Unit)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
