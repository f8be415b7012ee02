package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func newDraftEntry(t *testing.T) *StockEntry {
	t.Helper()
	entry, err := NewStockEntry(uuid.New(), "SE-20260829-0001", time.Now())
	require.NoError(t, err)
	return entry
}

func receiptLine(qty, rate int64) DetailLine {
	return DetailLine{
		ItemID:       uuid.New(),
		WarehouseID:  uuid.New(),
		MovementType: MovementReceipt,
		Quantity:     decimal.NewFromInt(qty),
		Rate:         decimal.NewFromInt(rate),
	}
}

func TestNewStockEntry(t *testing.T) {
	entry := newDraftEntry(t)
	assert.True(t, entry.IsDraft())
	assert.Equal(t, "SE-20260829-0001", entry.EntryNumber)

	_, err := NewStockEntry(uuid.New(), "", time.Now())
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestStockEntry_AddDetail(t *testing.T) {
	t.Run("appends lines with increasing line numbers", func(t *testing.T) {
		entry := newDraftEntry(t)

		d1, err := entry.AddDetail(receiptLine(10, 5))
		require.NoError(t, err)
		d2, err := entry.AddDetail(receiptLine(20, 5))
		require.NoError(t, err)

		assert.Equal(t, 1, d1.LineNo)
		assert.Equal(t, 2, d2.LineNo)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		entry := newDraftEntry(t)
		line := receiptLine(0, 5)
		_, err := entry.AddDetail(line)
		require.Error(t, err)
	})

	t.Run("rejects batch movement kind without batch reference", func(t *testing.T) {
		entry := newDraftEntry(t)
		line := receiptLine(10, 5)
		line.BatchMovement = BatchMovementConsume
		_, err := entry.AddDetail(line)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestStockEntry_RemoveDetail(t *testing.T) {
	entry := newDraftEntry(t)
	d1, err := entry.AddDetail(receiptLine(10, 5))
	require.NoError(t, err)
	id1 := d1.ID
	_, err = entry.AddDetail(receiptLine(20, 5))
	require.NoError(t, err)

	require.NoError(t, entry.RemoveDetail(id1))
	require.Len(t, entry.Details, 1)
	assert.Equal(t, 1, entry.Details[0].LineNo, "remaining lines are renumbered")
}

func TestStockEntry_ValidateForPosting(t *testing.T) {
	t.Run("rejects entry with no lines", func(t *testing.T) {
		entry := newDraftEntry(t)
		err := entry.ValidateForPosting()
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("accepts draft with valid lines", func(t *testing.T) {
		entry := newDraftEntry(t)
		_, err := entry.AddDetail(receiptLine(10, 5))
		require.NoError(t, err)
		assert.NoError(t, entry.ValidateForPosting())
	})
}

func TestStockEntry_MarkPosted(t *testing.T) {
	entry := newDraftEntry(t)
	_, err := entry.AddDetail(receiptLine(10, 5))
	require.NoError(t, err)
	postedBy := uuid.New()

	require.NoError(t, entry.MarkPosted(postedBy))
	assert.True(t, entry.IsPosted())
	assert.NotNil(t, entry.PostedAt)
	assert.Equal(t, postedBy, *entry.PostedBy)

	t.Run("posted entries are immutable", func(t *testing.T) {
		_, err := entry.AddDetail(receiptLine(5, 5))
		require.Error(t, err)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))

		assert.Error(t, entry.Update("PO", "123", ""))
		assert.Error(t, entry.RemoveDetail(entry.Details[0].ID))
	})

	t.Run("posting twice is rejected", func(t *testing.T) {
		err := entry.MarkPosted(postedBy)
		require.Error(t, err)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	})

	t.Run("posted entries cannot be marked failed", func(t *testing.T) {
		err := entry.MarkAsFailed("too late")
		require.Error(t, err)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	})
}

func TestStockEntry_MarkAsFailed(t *testing.T) {
	entry := newDraftEntry(t)

	require.Error(t, entry.MarkAsFailed(""), "reason is required")

	require.NoError(t, entry.MarkAsFailed("wrong warehouse"))
	assert.Equal(t, EntryStateRejected, entry.State)
	assert.Contains(t, entry.Notes, "wrong warehouse")

	// Rejected entries are terminal too.
	_, err := entry.AddDetail(receiptLine(1, 1))
	require.Error(t, err)
	require.Error(t, entry.ValidateForPosting())
}

func TestStockEntry_Totals(t *testing.T) {
	entry := newDraftEntry(t)
	_, err := entry.AddDetail(receiptLine(10, 5))
	require.NoError(t, err)
	_, err = entry.AddDetail(receiptLine(4, 3))
	require.NoError(t, err)
	_, err = entry.AddAdditionalCost("freight", decimal.NewFromInt(8))
	require.NoError(t, err)

	assert.True(t, entry.TotalQuantity().Equal(decimal.NewFromInt(14)))
	// 10*5 + 4*3 + 8
	assert.True(t, entry.TotalValue().Equal(decimal.NewFromInt(70)))
}
