package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ReorderNotifier is the collaborator hook for low-stock alerts. A
// procurement integration can implement it to turn alerts into purchase
// suggestions; without one the handler only logs.
type ReorderNotifier interface {
	// NotifyLowStock delivers one low-stock alert.
	NotifyLowStock(ctx context.Context, event *inventory.StockLevelLowEvent) error
}

// LowStockHandler subscribes to StockLevelLow events and raises a structured
// alert for each one.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier ReorderNotifier
}

// NewLowStockHandler creates a LowStockHandler.
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier sets the procurement notifier.
func (h *LowStockHandler) WithNotifier(notifier ReorderNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in.
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLevelLow}
}

// Handle processes a StockLevelLow event.
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.StockLevelLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	h.logger.Warn("stock level below reorder threshold",
		zap.String("company_id", low.CompanyID().String()),
		zap.String("item_id", low.ItemID.String()),
		zap.String("item_sku", low.ItemSKU),
		zap.String("item_name", low.ItemName),
		zap.String("warehouse_id", low.WarehouseID.String()),
		zap.String("bin", low.Bin),
		zap.String("current_quantity", low.CurrentQuantity.String()),
		zap.String("reorder_level", low.ReorderLevel.String()),
		zap.String("reorder_quantity", low.ReorderQuantity.String()),
	)

	if h.notifier != nil {
		if err := h.notifier.NotifyLowStock(ctx, low); err != nil {
			h.logger.Error("low stock notification failed",
				zap.String("item_sku", low.ItemSKU),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
