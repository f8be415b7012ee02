package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSKU(t *testing.T) {
	t.Run("normalizes to uppercase", func(t *testing.T) {
		sku, err := NewSKU("  sugar-1kg ")
		require.NoError(t, err)
		assert.Equal(t, "SUGAR-1KG", sku.String())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{"", "A", "-AB", "HAS SPACE", "unders_core"} {
			_, err := NewSKU(raw)
			assert.Error(t, err, "raw=%q", raw)
		}
	})
}

func TestEntryNumber(t *testing.T) {
	date := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)

	t.Run("formats with zero-padded sequence", func(t *testing.T) {
		assert.Equal(t, "SE-20260829-0007", NewEntryNumber(date, 7).String())
		assert.Equal(t, "SE-20260829-0123", NewEntryNumber(date, 123).String())
	})

	t.Run("sequence beyond four digits grows naturally", func(t *testing.T) {
		assert.Equal(t, "SE-20260829-10001", NewEntryNumber(date, 10001).String())
	})

	t.Run("parse accepts generated numbers", func(t *testing.T) {
		n, err := ParseEntryNumber("SE-20260829-0001")
		require.NoError(t, err)
		assert.Equal(t, "SE-20260829-0001", n.String())

		_, err = ParseEntryNumber("SE-2026-1")
		assert.Error(t, err)
	})
}
