package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// BalanceCacheHandler drops the cached balance of every key a posting moved.
// Subscribed alongside the posting event stream it keeps GetBalance from
// serving a pre-posting balance for the remainder of the cache TTL.
type BalanceCacheHandler struct {
	logger *zap.Logger
	cache  LevelCache
}

// NewBalanceCacheHandler creates a BalanceCacheHandler.
func NewBalanceCacheHandler(logger *zap.Logger, cache LevelCache) *BalanceCacheHandler {
	return &BalanceCacheHandler{logger: logger, cache: cache}
}

// EventTypes returns the event types this handler is interested in.
func (h *BalanceCacheHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockReceived, inventory.EventTypeStockIssued}
}

// Handle invalidates the cached balance for the movement's key.
func (h *BalanceCacheHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockReceivedEvent:
		return h.invalidate(ctx, e.CompanyID(), e.ItemID, e.WarehouseID, e.Bin)
	case *inventory.StockIssuedEvent:
		return h.invalidate(ctx, e.CompanyID(), e.ItemID, e.WarehouseID, e.Bin)
	}
	return fmt.Errorf("unexpected event type %s", event.EventType())
}

func (h *BalanceCacheHandler) invalidate(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) error {
	if err := h.cache.Invalidate(ctx, companyID, itemID, warehouseID, bin); err != nil {
		h.logger.Warn("balance cache invalidation failed",
			zap.String("item_id", itemID.String()),
			zap.String("warehouse_id", warehouseID.String()),
			zap.String("bin", bin),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*BalanceCacheHandler)(nil)
