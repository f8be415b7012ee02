package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		sum, err := NewMoneyZARFromFloat(10.50).Add(NewMoneyZARFromFloat(4.25))
		require.NoError(t, err)
		assert.True(t, sum.Equals(NewMoneyZARFromFloat(14.75)))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = NewMoneyZARFromFloat(10).Add(usd)
		assert.Error(t, err)
	})

	t.Run("subtract can go negative", func(t *testing.T) {
		diff, err := NewMoneyZARFromFloat(5).Subtract(NewMoneyZARFromFloat(8))
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})

	t.Run("multiply and round", func(t *testing.T) {
		total := NewMoneyZARFromFloat(3.333).Multiply(decimal.NewFromInt(3)).Round(2)
		assert.Equal(t, "10.00", total.Amount().StringFixed(2))
	})
}

func TestMoney_Construction(t *testing.T) {
	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("19.95", ZAR)
		require.NoError(t, err)
		assert.Equal(t, "19.95 ZAR", m.String())

		_, err = NewMoneyFromString("abc", ZAR)
		assert.Error(t, err)
	})
}

func TestMoney_Persistence(t *testing.T) {
	t.Run("value stores the bare amount", func(t *testing.T) {
		v, err := NewMoneyZARFromFloat(12.5).Value()
		require.NoError(t, err)
		assert.Equal(t, "12.5", v)
	})

	t.Run("scan restores amount with default currency", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.1000"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.1)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scan nil is zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})
}
