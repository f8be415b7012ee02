package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

func newItem(t *testing.T) *Item {
	t.Helper()
	item, err := NewItem(
		uuid.New(),
		"sku-001", "Sugar 1kg", "grocery", "kg",
		valueobject.NewMoneyZARFromFloat(25),
		valueobject.NewMoneyZARFromFloat(18),
		decimal.NewFromInt(10), decimal.NewFromInt(50),
		ValuationWeightedAverage,
	)
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	t.Run("creates item with normalized SKU", func(t *testing.T) {
		item := newItem(t)

		assert.Equal(t, "SKU-001", item.SKU)
		assert.True(t, item.Active)
		assert.True(t, item.LastKnownCost.Equal(item.CostPrice))
		assert.Len(t, item.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive selling price", func(t *testing.T) {
		_, err := NewItem(uuid.New(), "SKU-1", "X", "", "ea",
			valueobject.NewMoneyZARFromFloat(0),
			valueobject.NewMoneyZARFromFloat(0),
			decimal.Zero, decimal.Zero, ValuationStandard)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("rejects unknown valuation method", func(t *testing.T) {
		_, err := NewItem(uuid.New(), "SKU-1", "X", "", "ea",
			valueobject.NewMoneyZARFromFloat(1),
			valueobject.NewMoneyZARFromFloat(0),
			decimal.Zero, decimal.Zero, ValuationMethod("lifo"))
		require.Error(t, err)
	})
}

func TestItem_UpdatePricing(t *testing.T) {
	item := newItem(t)

	cost := valueobject.NewMoneyZARFromFloat(20)
	require.NoError(t, item.UpdatePricing(valueobject.NewMoneyZARFromFloat(30), &cost))
	assert.True(t, item.SellingPrice.Equal(decimal.NewFromInt(30)))
	assert.True(t, item.CostPrice.Equal(decimal.NewFromInt(20)))

	t.Run("nil cost price leaves it unchanged", func(t *testing.T) {
		require.NoError(t, item.UpdatePricing(valueobject.NewMoneyZARFromFloat(35), nil))
		assert.True(t, item.CostPrice.Equal(decimal.NewFromInt(20)))
	})
}

func TestItem_Deactivate(t *testing.T) {
	item := newItem(t)
	item.ClearDomainEvents()

	item.Deactivate()
	assert.False(t, item.Active)
	events := len(item.GetDomainEvents())

	// Idempotent: no second event, no state change.
	item.Deactivate()
	assert.False(t, item.Active)
	assert.Len(t, item.GetDomainEvents(), events)

	item.Activate()
	assert.True(t, item.Active)
}

func TestItem_IsLowStock(t *testing.T) {
	item := newItem(t) // reorder level 10

	assert.True(t, item.IsLowStock(decimal.NewFromInt(9)))
	assert.False(t, item.IsLowStock(decimal.NewFromInt(10)))
	assert.False(t, item.IsLowStock(decimal.NewFromInt(11)))

	t.Run("zero reorder level never reports low", func(t *testing.T) {
		require.NoError(t, item.SetReorderLevels(decimal.Zero, decimal.Zero))
		assert.False(t, item.IsLowStock(decimal.NewFromInt(-5)))
	})
}

func TestItem_SetValuationMethod(t *testing.T) {
	item := newItem(t)

	require.NoError(t, item.SetValuationMethod(ValuationFIFO))
	assert.Equal(t, ValuationFIFO, item.ValuationMethod)

	err := item.SetValuationMethod(ValuationMethod("bogus"))
	require.Error(t, err)
}

func TestItem_UpdateLastKnownCost(t *testing.T) {
	item := newItem(t)

	item.UpdateLastKnownCost(decimal.NewFromInt(22))
	assert.True(t, item.LastKnownCost.Equal(decimal.NewFromInt(22)))
}

func TestItem_Measure(t *testing.T) {
	item := newItem(t)

	qty, err := item.Measure(decimal.NewFromInt(12))
	require.NoError(t, err)
	assert.Equal(t, "kg", qty.Unit())
	assert.Equal(t, "12 kg", qty.String())

	_, err = item.Measure(decimal.NewFromInt(-1))
	assert.Error(t, err)
}
