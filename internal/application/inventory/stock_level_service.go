package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LevelCache is a read-through cache for stock level lookups. Implementations
// must treat a miss as (nil, nil); cache failures must never fail a query.
type LevelCache interface {
	// Get returns the cached level for a key, or nil on a miss.
	Get(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*StockLevelResponse, error)
	// Set stores the level for a key.
	Set(ctx context.Context, companyID uuid.UUID, level *StockLevelResponse) error
	// Invalidate drops the cached entry for a key.
	Invalidate(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) error
}

// StockLevelService answers balance and ledger queries and runs projection
// rebuilds.
type StockLevelService struct {
	levelRepo      inventory.StockLevelRepository
	movementRepo   inventory.StockMovementRepository
	scope          TransactionScope
	cache          LevelCache
	eventPublisher shared.EventPublisher
}

// NewStockLevelService creates a StockLevelService.
func NewStockLevelService(
	levelRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
	scope TransactionScope,
) *StockLevelService {
	return &StockLevelService{
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		scope:        scope,
	}
}

// SetCache enables the read-through cache for balance lookups.
func (s *StockLevelService) SetCache(cache LevelCache) {
	s.cache = cache
}

// SetEventPublisher sets the publisher for rebuild events.
func (s *StockLevelService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetBalance returns the balance for one (item, warehouse, bin) key. A key
// that has never moved reports a zero balance rather than an error.
func (s *StockLevelService) GetBalance(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*StockLevelResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, companyID, itemID, warehouseID, bin); err == nil && cached != nil {
			return cached, nil
		}
	}

	level, err := s.levelRepo.FindByKey(ctx, companyID, itemID, warehouseID, bin)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			zero, zerr := inventory.NewStockLevel(companyID, itemID, warehouseID, bin)
			if zerr != nil {
				return nil, zerr
			}
			return ToStockLevelResponse(zero), nil
		}
		return nil, err
	}

	resp := ToStockLevelResponse(level)
	if s.cache != nil {
		_ = s.cache.Set(ctx, companyID, resp)
	}
	return resp, nil
}

// ListBalancesByItem returns every location balance of an item.
func (s *StockLevelService) ListBalancesByItem(ctx context.Context, companyID, itemID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.levelRepo.FindByItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	return toLevelResponses(levels), nil
}

// ListBalancesByWarehouse returns the balances held in a warehouse.
func (s *StockLevelService) ListBalancesByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, error) {
	levels, err := s.levelRepo.FindByWarehouse(ctx, companyID, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	return toLevelResponses(levels), nil
}

// ListLowStock returns levels below their item's reorder threshold.
func (s *StockLevelService) ListLowStock(ctx context.Context, companyID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.levelRepo.FindBelowReorderLevel(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toLevelResponses(levels), nil
}

// ListMovementsByKey returns the full ledger for one key in sequence order.
func (s *StockLevelService) ListMovementsByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByKey(ctx, companyID, itemID, warehouseID, bin)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListMovementsByItem returns an item's movements across all locations.
func (s *StockLevelService) ListMovementsByItem(ctx context.Context, companyID, itemID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByItem(ctx, companyID, itemID, filter)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListMovementsByEntry returns the movements one stock entry produced.
func (s *StockLevelService) ListMovementsByEntry(ctx context.Context, companyID, entryID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByEntry(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// InvalidateBalance drops the cached balance for a key. Postings invalidate
// through the BalanceCacheHandler subscription; rebuilds call this directly.
func (s *StockLevelService) InvalidateBalance(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, companyID, itemID, warehouseID, bin)
}

// Rebuild replays the movement history for one key into a fresh projection,
// compares it with the live row and repairs the live row when they disagree.
// The replay and the repair run in one transaction.
func (s *StockLevelService) Rebuild(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*RebuildResponse, error) {
	var resp *RebuildResponse
	var event *inventory.StockLevelRebuiltEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.MovementRepo().FindByKey(ctx, companyID, itemID, warehouseID, bin)
		if err != nil {
			return err
		}

		rebuilt, err := inventory.RebuildStockLevel(companyID, itemID, warehouseID, bin, movements)
		if err != nil {
			return err
		}

		live, err := repos.LevelRepo().FindByKey(ctx, companyID, itemID, warehouseID, bin)
		if err != nil {
			if shared.KindOf(err) != shared.KindNotFound {
				return err
			}
			// No live row: persist the rebuilt projection as-is.
			if err := repos.LevelRepo().Save(ctx, rebuilt); err != nil {
				return err
			}
			resp = &RebuildResponse{
				ItemID:            itemID,
				WarehouseID:       warehouseID,
				Bin:               bin,
				PreviousQuantity:  rebuilt.Quantity,
				RebuiltQuantity:   rebuilt.Quantity,
				MovementsReplayed: int64(len(movements)),
				DriftDetected:     false,
			}
			return nil
		}

		drift := !live.Quantity.Equal(rebuilt.Quantity) ||
			!live.AvgCost.Equal(rebuilt.AvgCost) ||
			live.MovementCount != rebuilt.MovementCount

		resp = &RebuildResponse{
			ItemID:            itemID,
			WarehouseID:       warehouseID,
			Bin:               bin,
			PreviousQuantity:  live.Quantity,
			RebuiltQuantity:   rebuilt.Quantity,
			MovementsReplayed: int64(len(movements)),
			DriftDetected:     drift,
		}

		if drift {
			prev := live.Quantity
			live.Quantity = rebuilt.Quantity
			live.AvgCost = rebuilt.AvgCost
			live.MovementCount = rebuilt.MovementCount
			live.LastMovementID = rebuilt.LastMovementID
			live.LastMovementAt = rebuilt.LastMovementAt
			live.Touch()
			live.IncrementVersion()
			if err := repos.LevelRepo().SaveWithLock(ctx, live, live.Version-1); err != nil {
				return err
			}
			resp.Repaired = true
			event = inventory.NewStockLevelRebuiltEvent(live, prev, rebuilt.Quantity, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event != nil && s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	s.InvalidateBalance(ctx, companyID, itemID, warehouseID, bin)

	return resp, nil
}

func toLevelResponses(levels []inventory.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, 0, len(levels))
	for i := range levels {
		out = append(out, *ToStockLevelResponse(&levels[i]))
	}
	return out
}

func toMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, *ToMovementResponse(&movements[i]))
	}
	return out
}
