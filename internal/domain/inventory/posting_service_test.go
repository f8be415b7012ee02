package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

type postingFixture struct {
	items     *fakeItemRepo
	entries   *fakeEntryRepo
	movements *fakeMovementRepo
	levels    *fakeLevelRepo
	batches   *fakeBatchRepo
	layers    *fakeLayerRepo
	service   *PostingService
	companyID uuid.UUID
	postedBy  uuid.UUID
}

func newPostingFixture(items ...*catalog.Item) *postingFixture {
	f := &postingFixture{
		items:     newFakeItemRepo(items...),
		entries:   newFakeEntryRepo(),
		movements: &fakeMovementRepo{},
		levels:    newFakeLevelRepo(),
		batches:   newFakeBatchRepo(),
		layers:    &fakeLayerRepo{},
		postedBy:  uuid.New(),
	}
	if len(items) > 0 {
		f.companyID = items[0].CompanyID
	} else {
		f.companyID = uuid.New()
	}
	f.service = NewPostingService(f.items, f.entries, f.movements, f.levels, f.batches, f.layers)
	return f
}

func (f *postingFixture) newEntry(t *testing.T) *StockEntry {
	t.Helper()
	entry, err := NewStockEntry(f.companyID, "SE-20260829-0001", time.Now())
	require.NoError(t, err)
	return entry
}

func (f *postingFixture) post(t *testing.T, entry *StockEntry) *PostResult {
	t.Helper()
	result, err := f.service.Post(context.Background(), entry, f.postedBy)
	require.NoError(t, err)
	return result
}

func companyItem(t *testing.T, companyID uuid.UUID, sku string, method catalog.ValuationMethod, reorderLevel int64) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(
		companyID, sku, "Item "+sku, "grocery", "kg",
		valueobject.NewMoneyZARFromFloat(25),
		valueobject.NewMoneyZARFromFloat(10),
		decimal.NewFromInt(reorderLevel), decimal.NewFromInt(reorderLevel*2),
		method,
	)
	require.NoError(t, err)
	return item
}

func TestPostingService_Post_WeightedAverage(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "SUGAR-1KG", catalog.ValuationWeightedAverage, 0)
	warehouseID := uuid.New()

	f := newPostingFixture(item)

	// Receipt 10 @ 5.00 and 10 @ 8.00 on the same key in one entry.
	receipt := f.newEntry(t)
	for _, spec := range [][2]int64{{10, 5}, {10, 8}} {
		_, err := receipt.AddDetail(DetailLine{
			ItemID: item.ID, WarehouseID: warehouseID,
			MovementType: MovementReceipt,
			Quantity:     decimal.NewFromInt(spec[0]),
			Rate:         decimal.NewFromInt(spec[1]),
		})
		require.NoError(t, err)
	}
	result := f.post(t, receipt)

	require.Len(t, result.Movements, 2)
	assert.True(t, receipt.IsPosted())

	// Second line must observe the first line's effect within the post.
	assert.True(t, result.Movements[1].QuantityBefore.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(2), result.Movements[1].Sequence)

	level, err := f.levels.FindByKey(context.Background(), companyID, item.ID, warehouseID, "")
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, level.AvgCost.Equal(decimal.NewFromFloat(6.5)), "got %s", level.AvgCost)

	// Issue 5: valued at the running average, average unchanged.
	issue, err := NewStockEntry(companyID, "SE-20260829-0002", time.Now())
	require.NoError(t, err)
	_, err = issue.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementIssue,
		Quantity:     decimal.NewFromInt(5),
		Rate:         decimal.Zero,
	})
	require.NoError(t, err)
	result = f.post(t, issue)

	require.Len(t, result.Movements, 1)
	assert.True(t, result.Movements[0].UnitCost.Equal(decimal.NewFromFloat(6.5)))

	level, err = f.levels.FindByKey(context.Background(), companyID, item.ID, warehouseID, "")
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, level.AvgCost.Equal(decimal.NewFromFloat(6.5)))

	// Inbound receipts refresh the item's last known cost.
	assert.True(t, item.LastKnownCost.Equal(decimal.NewFromInt(8)))
}

func TestPostingService_Post_FIFO(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "WIDGET", catalog.ValuationFIFO, 0)
	warehouseID := uuid.New()

	f := newPostingFixture(item)

	receipt := f.newEntry(t)
	for _, spec := range [][2]int64{{10, 5}, {10, 8}} {
		_, err := receipt.AddDetail(DetailLine{
			ItemID: item.ID, WarehouseID: warehouseID,
			MovementType: MovementReceipt,
			Quantity:     decimal.NewFromInt(spec[0]),
			Rate:         decimal.NewFromInt(spec[1]),
		})
		require.NoError(t, err)
	}
	f.post(t, receipt)

	// Two layers created with consecutive sequences.
	layers, err := f.layers.FindOpenByKey(context.Background(), companyID, item.ID, warehouseID, "")
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, int64(1), layers[0].Sequence)
	assert.Equal(t, int64(2), layers[1].Sequence)

	// Issue 15: (10*5 + 5*8) / 15 = 6.
	issue, err := NewStockEntry(companyID, "SE-20260829-0002", time.Now())
	require.NoError(t, err)
	_, err = issue.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementIssue,
		Quantity:     decimal.NewFromInt(15),
		Rate:         decimal.Zero,
	})
	require.NoError(t, err)
	result := f.post(t, issue)

	assert.True(t, result.Movements[0].UnitCost.Equal(decimal.NewFromInt(6)))

	layers, err = f.layers.FindOpenByKey(context.Background(), companyID, item.ID, warehouseID, "")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.True(t, layers[0].Quantity.Equal(decimal.NewFromInt(5)))
}

func TestPostingService_Post_BatchCounters(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "PAINT-5L", catalog.ValuationWeightedAverage, 0)
	warehouseID := uuid.New()

	batch, err := NewBatch(companyID, item.ID, "LOT-7", decimal.Zero, nil, nil)
	require.NoError(t, err)

	f := newPostingFixture(item)
	require.NoError(t, f.batches.Save(context.Background(), batch))

	receipt := f.newEntry(t)
	_, err = receipt.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementReceipt,
		Quantity:     decimal.NewFromInt(40),
		Rate:         decimal.NewFromInt(5),
		BatchID:      &batch.ID,
	})
	require.NoError(t, err)
	result := f.post(t, receipt)

	assert.True(t, batch.Received.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, result.Movements[0].BatchID)
	assert.Equal(t, batch.ID, *result.Movements[0].BatchID)

	issue, err := NewStockEntry(companyID, "SE-20260829-0002", time.Now())
	require.NoError(t, err)
	_, err = issue.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementIssue,
		Quantity:     decimal.NewFromInt(15),
		Rate:         decimal.Zero,
		BatchID:      &batch.ID,
	})
	require.NoError(t, err)
	f.post(t, issue)

	assert.True(t, batch.Consumed.Equal(decimal.NewFromInt(15)))
	assert.True(t, batch.EffectiveQuantity().Equal(decimal.NewFromInt(25)))
}

func TestPostingService_Post_BatchItemMismatch(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "ITEM-A", catalog.ValuationWeightedAverage, 0)
	otherItem := companyItem(t, companyID, "ITEM-B", catalog.ValuationWeightedAverage, 0)

	batch, err := NewBatch(companyID, otherItem.ID, "LOT-9", decimal.Zero, nil, nil)
	require.NoError(t, err)

	f := newPostingFixture(item, otherItem)
	require.NoError(t, f.batches.Save(context.Background(), batch))

	entry := f.newEntry(t)
	_, err = entry.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: uuid.New(),
		MovementType: MovementReceipt,
		Quantity:     decimal.NewFromInt(1),
		Rate:         decimal.NewFromInt(1),
		BatchID:      &batch.ID,
	})
	require.NoError(t, err)

	_, err = f.service.Post(context.Background(), entry, f.postedBy)
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	assert.True(t, entry.IsDraft())
}

func TestPostingService_Post_LowStockEvent(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "FLOUR-2KG", catalog.ValuationWeightedAverage, 10)
	warehouseID := uuid.New()

	f := newPostingFixture(item)

	receipt := f.newEntry(t)
	_, err := receipt.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementReceipt,
		Quantity:     decimal.NewFromInt(12),
		Rate:         decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	f.post(t, receipt)

	// Issue 5 takes the balance from 12 to 7, crossing the reorder level.
	issue, err := NewStockEntry(companyID, "SE-20260829-0002", time.Now())
	require.NoError(t, err)
	_, err = issue.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementIssue,
		Quantity:     decimal.NewFromInt(5),
		Rate:         decimal.Zero,
	})
	require.NoError(t, err)
	result := f.post(t, issue)

	var lowEvents int
	for _, ev := range result.Events {
		if ev.EventType() == EventTypeStockLevelLow {
			lowEvents++
		}
	}
	assert.Equal(t, 1, lowEvents)

	// A further issue while already low must not re-emit.
	issue2, err := NewStockEntry(companyID, "SE-20260829-0003", time.Now())
	require.NoError(t, err)
	_, err = issue2.AddDetail(DetailLine{
		ItemID: item.ID, WarehouseID: warehouseID,
		MovementType: MovementIssue,
		Quantity:     decimal.NewFromInt(2),
		Rate:         decimal.Zero,
	})
	require.NoError(t, err)
	result = f.post(t, issue2)

	for _, ev := range result.Events {
		assert.NotEqual(t, EventTypeStockLevelLow, ev.EventType())
	}
}

func TestPostingService_Post_Failures(t *testing.T) {
	companyID := uuid.New()
	item := companyItem(t, companyID, "BRICK", catalog.ValuationWeightedAverage, 0)

	t.Run("empty entry is rejected", func(t *testing.T) {
		f := newPostingFixture(item)
		entry := f.newEntry(t)
		_, err := f.service.Post(context.Background(), entry, f.postedBy)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("missing posting user is rejected", func(t *testing.T) {
		f := newPostingFixture(item)
		entry := f.newEntry(t)
		_, err := entry.AddDetail(receiptLineFor(item, uuid.New()))
		require.NoError(t, err)
		_, err = f.service.Post(context.Background(), entry, uuid.Nil)
		require.Error(t, err)
	})

	t.Run("inactive item fails the whole post", func(t *testing.T) {
		inactive := companyItem(t, companyID, "RETIRED", catalog.ValuationWeightedAverage, 0)
		inactive.Deactivate()
		f := newPostingFixture(inactive)

		entry := f.newEntry(t)
		_, err := entry.AddDetail(receiptLineFor(inactive, uuid.New()))
		require.NoError(t, err)

		_, err = f.service.Post(context.Background(), entry, f.postedBy)
		require.Error(t, err)
		assert.True(t, entry.IsDraft())
	})

	t.Run("insufficient stock leaves nothing persisted", func(t *testing.T) {
		f := newPostingFixture(item)
		entry := f.newEntry(t)
		_, err := entry.AddDetail(DetailLine{
			ItemID: item.ID, WarehouseID: uuid.New(),
			MovementType: MovementIssue,
			Quantity:     decimal.NewFromInt(5),
			Rate:         decimal.Zero,
		})
		require.NoError(t, err)

		_, err = f.service.Post(context.Background(), entry, f.postedBy)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.True(t, entry.IsDraft())
		assert.Empty(t, f.movements.movements)
	})

	t.Run("persistence failure surfaces and entry stays draft", func(t *testing.T) {
		f := newPostingFixture(item)
		f.movements.saveErr = errors.New("connection reset")

		entry := f.newEntry(t)
		_, err := entry.AddDetail(receiptLineFor(item, uuid.New()))
		require.NoError(t, err)

		_, err = f.service.Post(context.Background(), entry, f.postedBy)
		require.Error(t, err)
		assert.True(t, entry.IsDraft())
	})
}

func receiptLineFor(item *catalog.Item, warehouseID uuid.UUID) DetailLine {
	return DetailLine{
		ItemID:       item.ID,
		WarehouseID:  warehouseID,
		MovementType: MovementReceipt,
		Quantity:     decimal.NewFromInt(10),
		Rate:         decimal.NewFromInt(5),
	}
}
