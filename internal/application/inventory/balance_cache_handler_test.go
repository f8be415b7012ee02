package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/infrastructure/event"
)

// cachedBalanceFixture wires the entry service through the real event bus so
// that postings reach the cache invalidation subscription, the way cmd/server
// assembles them.
type cachedBalanceFixture struct {
	*entryServiceFixture
	cache  *memLevelCache
	levels *StockLevelService
}

func newCachedBalanceFixture(t *testing.T, items ...*catalog.Item) *cachedBalanceFixture {
	t.Helper()
	f := newEntryServiceFixture(items...)

	cache := newMemLevelCache()
	scope := NewNoOpTransactionScope(f.items, f.entries, f.movements, f.levels, f.batches, f.layers)
	levels := NewStockLevelService(f.levels, f.movements, scope)
	levels.SetCache(cache)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	handler := NewBalanceCacheHandler(zap.NewNop(), cache)
	bus.Subscribe(handler, handler.EventTypes()...)
	f.service.SetEventPublisher(bus)

	return &cachedBalanceFixture{entryServiceFixture: f, cache: cache, levels: levels}
}

func TestBalanceCacheHandler(t *testing.T) {
	t.Run("posting a receipt drops the cached balance", func(t *testing.T) {
		companyID := uuid.New()
		item := serviceItem(t, companyID, "RICE-5KG")
		warehouseID := uuid.New()
		f := newCachedBalanceFixture(t, item)

		receive := func(qty int64) {
			_, err := f.service.ReceiveStock(context.Background(), f.companyID, ReceiveStockRequest{
				ItemID:      item.ID,
				WarehouseID: warehouseID,
				Quantity:    decimal.NewFromInt(qty),
				Rate:        decimal.NewFromInt(6),
				PostedBy:    uuid.New(),
			})
			require.NoError(t, err)
		}

		receive(100)
		first, err := f.levels.GetBalance(context.Background(), f.companyID, item.ID, warehouseID, "")
		require.NoError(t, err)
		assert.True(t, first.Quantity.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 1, f.cache.sets)

		receive(50)
		assert.GreaterOrEqual(t, f.cache.invalidated, 1)

		second, err := f.levels.GetBalance(context.Background(), f.companyID, item.ID, warehouseID, "")
		require.NoError(t, err)
		assert.True(t, second.Quantity.Equal(decimal.NewFromInt(150)),
			"balance after posting should be 150, got %s", second.Quantity)
	})

	t.Run("posting an issue drops the cached balance", func(t *testing.T) {
		companyID := uuid.New()
		item := serviceItem(t, companyID, "RICE-5KG")
		warehouseID := uuid.New()
		f := newCachedBalanceFixture(t, item)

		_, err := f.service.ReceiveStock(context.Background(), f.companyID, ReceiveStockRequest{
			ItemID:      item.ID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(100),
			Rate:        decimal.NewFromInt(6),
			PostedBy:    uuid.New(),
		})
		require.NoError(t, err)

		_, err = f.levels.GetBalance(context.Background(), f.companyID, item.ID, warehouseID, "")
		require.NoError(t, err)
		invalidatedBefore := f.cache.invalidated

		draft, err := f.service.CreateEntry(context.Background(), f.companyID, CreateStockEntryRequest{
			Details: []DetailRequest{{
				ItemID:       item.ID,
				WarehouseID:  warehouseID,
				MovementType: "ISSUE",
				Quantity:     decimal.NewFromInt(30),
			}},
		})
		require.NoError(t, err)
		_, err = f.service.SubmitEntry(context.Background(), f.companyID, draft.ID, uuid.New())
		require.NoError(t, err)

		assert.Greater(t, f.cache.invalidated, invalidatedBefore)

		balance, err := f.levels.GetBalance(context.Background(), f.companyID, item.ID, warehouseID, "")
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(70)))
	})
}
