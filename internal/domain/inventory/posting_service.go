package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// PostingService executes the posting of a stock entry: it resolves every
// referenced item up front, values each line with the item's costing method,
// appends movement facts, mutates batch counters and stock level projections,
// and flips the entry to its terminal Posted state. The caller must run Post
// inside a single transaction; every repository write commits or rolls back
// together.
type PostingService struct {
	items     catalog.ItemRepository
	entries   StockEntryRepository
	movements StockMovementRepository
	levels    StockLevelRepository
	batches   BatchRepository
	layers    CostLayerRepository
	valuation *ValuationEngine
}

// NewPostingService creates a PostingService.
func NewPostingService(
	items catalog.ItemRepository,
	entries StockEntryRepository,
	movements StockMovementRepository,
	levels StockLevelRepository,
	batches BatchRepository,
	layers CostLayerRepository,
) *PostingService {
	return &PostingService{
		items:     items,
		entries:   entries,
		movements: movements,
		levels:    levels,
		batches:   batches,
		layers:    layers,
		valuation: NewValuationEngine(),
	}
}

// PostResult carries the outcome of a successful posting for the caller to
// publish and report.
type PostResult struct {
	Entry     *StockEntry
	Movements []*StockMovement
	Events    []shared.DomainEvent
}

// levelKey identifies one stock level projection in the per-post working set.
type levelKey struct {
	itemID      uuid.UUID
	warehouseID uuid.UUID
	bin         string
}

// trackedLevel pairs an in-memory projection with the version it was loaded
// at, for the optimistic-lock update at the end of the post.
type trackedLevel struct {
	level       *StockLevel
	loadedAt    int
	createdHere bool
}

// Post applies every detail line of a draft entry in line order. All
// referenced aggregates are loaded once into a working set so that multiple
// lines touching the same key observe each other's effects within the post.
// Any failure leaves nothing applied: the caller rolls the transaction back
// and the entry stays Draft.
func (s *PostingService) Post(ctx context.Context, entry *StockEntry, postedBy uuid.UUID) (*PostResult, error) {
	if err := entry.ValidateForPosting(); err != nil {
		return nil, err
	}
	if postedBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_POSTED_BY", "Posting user is required")
	}

	items, err := s.resolveItems(ctx, entry)
	if err != nil {
		return nil, err
	}

	levelSet := make(map[levelKey]*trackedLevel)
	batchSet := make(map[uuid.UUID]*Batch)
	layerSet := make(map[levelKey][]*CostLayer)
	costTouched := make(map[uuid.UUID]bool)

	result := &PostResult{Entry: entry}

	for i := range entry.Details {
		detail := &entry.Details[i]
		item := items[detail.ItemID]

		tl, err := s.levelFor(ctx, entry.CompanyID, detail, levelSet)
		if err != nil {
			return nil, err
		}
		level := tl.level

		var unitCost = detail.Rate
		requiresReconciliation := false

		if detail.MovementType.IsInbound() {
			unitCost, err = s.valuation.ReceiptCost(item, detail.Rate)
			if err != nil {
				return nil, err
			}
			if item.ValuationMethod == catalog.ValuationFIFO {
				seq, err := s.nextLayerSequence(ctx, entry.CompanyID, detail, layerSet)
				if err != nil {
					return nil, err
				}
				layer := NewCostLayer(entry.CompanyID, detail.ItemID, detail.WarehouseID, detail.Bin, seq, detail.Quantity, unitCost)
				key := levelKey{detail.ItemID, detail.WarehouseID, detail.Bin}
				layerSet[key] = append(layerSet[key], layer)
			}
			item.UpdateLastKnownCost(unitCost)
			costTouched[item.ID] = true
		} else {
			layers, err := s.layersFor(ctx, entry.CompanyID, item, detail, layerSet)
			if err != nil {
				return nil, err
			}
			valued, err := s.valuation.IssueCost(item, level, layers, detail.Quantity, detail.AllowNegative)
			if err != nil {
				return nil, fmt.Errorf("valuing line %d: %w", detail.LineNo, err)
			}
			unitCost = valued.UnitCost
			requiresReconciliation = valued.RequiresReconciliation
		}

		movement, err := NewStockMovement(
			entry.CompanyID, entry.ID, entry.EntryNumber,
			detail.ID, detail.ItemID, detail.WarehouseID, detail.Bin,
			detail.MovementType,
			detail.Quantity, level.Quantity, unitCost,
			item.ValuationMethod.String(),
			level.NextSequence(),
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", detail.LineNo, err)
		}
		if detail.SerialNo != "" {
			movement.WithSerialNo(detail.SerialNo)
		}
		if requiresReconciliation {
			movement.FlagForReconciliation()
		}

		batchNumber := ""
		if detail.BatchID != nil {
			batch, err := s.batchFor(ctx, entry.CompanyID, *detail.BatchID, batchSet)
			if err != nil {
				return nil, err
			}
			if batch.ItemID != detail.ItemID {
				return nil, shared.NewValidationError("BATCH_ITEM_MISMATCH",
					"Batch "+batch.BatchNumber+" does not belong to the line item")
			}
			if err := batch.ApplyMovement(detail.EffectiveBatchMovement(), detail.Quantity); err != nil {
				return nil, fmt.Errorf("line %d batch %s: %w", detail.LineNo, batch.BatchNumber, err)
			}
			movement.WithBatch(batch.ID)
			batchNumber = batch.BatchNumber
		}

		wasLow := item.IsLowStock(level.Quantity)
		if err := level.ApplyMovement(movement); err != nil {
			return nil, err
		}

		result.Movements = append(result.Movements, movement)

		snapshot := ItemSnapshot{SKU: item.SKU, Name: item.Name}
		if detail.MovementType.IsInbound() {
			result.Events = append(result.Events, NewStockReceivedEvent(entry, snapshot, movement, batchNumber))
		} else {
			result.Events = append(result.Events, NewStockIssuedEvent(entry, snapshot, movement, batchNumber))
			if !wasLow && item.IsLowStock(level.Quantity) {
				result.Events = append(result.Events,
					NewStockLevelLowEvent(snapshot, item.ReorderLevel, item.ReorderQuantity, level))
			}
		}
	}

	if err := s.persist(ctx, entry, postedBy, result, items, costTouched, levelSet, batchSet, layerSet); err != nil {
		return nil, err
	}

	result.Events = append(result.Events, NewStockEntryPostedEvent(entry, postedBy))

	return result, nil
}

// resolveItems loads every distinct item the entry references, once, before
// any line is applied. Unknown or inactive items fail the whole post.
func (s *PostingService) resolveItems(ctx context.Context, entry *StockEntry) (map[uuid.UUID]*catalog.Item, error) {
	items := make(map[uuid.UUID]*catalog.Item)
	for i := range entry.Details {
		id := entry.Details[i].ItemID
		if _, ok := items[id]; ok {
			continue
		}
		item, err := s.items.FindByID(ctx, entry.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, shared.NewInvalidStateError("ITEM_INACTIVE",
				"Item "+item.SKU+" is inactive and cannot be moved")
		}
		items[id] = item
	}
	return items, nil
}

// levelFor returns the tracked projection for a line's key, loading or
// creating it on first touch.
func (s *PostingService) levelFor(ctx context.Context, companyID uuid.UUID, detail *StockEntryDetail, set map[levelKey]*trackedLevel) (*trackedLevel, error) {
	key := levelKey{detail.ItemID, detail.WarehouseID, detail.Bin}
	if tl, ok := set[key]; ok {
		return tl, nil
	}

	level, err := s.levels.FindByKey(ctx, companyID, detail.ItemID, detail.WarehouseID, detail.Bin)
	if err == nil {
		tl := &trackedLevel{level: level, loadedAt: level.Version}
		set[key] = tl
		return tl, nil
	}
	if shared.KindOf(err) != shared.KindNotFound {
		return nil, err
	}

	level, err = NewStockLevel(companyID, detail.ItemID, detail.WarehouseID, detail.Bin)
	if err != nil {
		return nil, err
	}
	tl := &trackedLevel{level: level, loadedAt: level.Version, createdHere: true}
	set[key] = tl
	return tl, nil
}

// layersFor returns the working FIFO layers for a line's key. Non-FIFO items
// carry no layers.
func (s *PostingService) layersFor(ctx context.Context, companyID uuid.UUID, item *catalog.Item, detail *StockEntryDetail, set map[levelKey][]*CostLayer) ([]*CostLayer, error) {
	if item.ValuationMethod != catalog.ValuationFIFO {
		return nil, nil
	}
	key := levelKey{detail.ItemID, detail.WarehouseID, detail.Bin}
	if layers, ok := set[key]; ok {
		return layers, nil
	}
	layers, err := s.layers.FindOpenByKey(ctx, companyID, detail.ItemID, detail.WarehouseID, detail.Bin)
	if err != nil {
		return nil, err
	}
	set[key] = layers
	return layers, nil
}

// nextLayerSequence allocates the sequence for a new layer, counting layers
// already created within this post.
func (s *PostingService) nextLayerSequence(ctx context.Context, companyID uuid.UUID, detail *StockEntryDetail, set map[levelKey][]*CostLayer) (int64, error) {
	key := levelKey{detail.ItemID, detail.WarehouseID, detail.Bin}
	if layers, ok := set[key]; ok && len(layers) > 0 {
		return layers[len(layers)-1].Sequence + 1, nil
	}
	return s.layers.NextSequence(ctx, companyID, detail.ItemID, detail.WarehouseID, detail.Bin)
}

// batchFor loads a batch into the working set on first touch.
func (s *PostingService) batchFor(ctx context.Context, companyID, batchID uuid.UUID, set map[uuid.UUID]*Batch) (*Batch, error) {
	if batch, ok := set[batchID]; ok {
		return batch, nil
	}
	batch, err := s.batches.FindByID(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	set[batchID] = batch
	return batch, nil
}

// persist writes the complete working set and flips the entry state. The
// projection update is guarded by the version each row was loaded at, so two
// concurrent posts on the same key cannot both win.
func (s *PostingService) persist(
	ctx context.Context,
	entry *StockEntry,
	postedBy uuid.UUID,
	result *PostResult,
	items map[uuid.UUID]*catalog.Item,
	costTouched map[uuid.UUID]bool,
	levelSet map[levelKey]*trackedLevel,
	batchSet map[uuid.UUID]*Batch,
	layerSet map[levelKey][]*CostLayer,
) error {
	if err := s.movements.SaveAll(ctx, result.Movements); err != nil {
		return fmt.Errorf("saving movements: %w", err)
	}

	for _, tl := range levelSet {
		if tl.createdHere {
			if err := s.levels.Save(ctx, tl.level); err != nil {
				return fmt.Errorf("creating stock level: %w", err)
			}
			continue
		}
		if err := s.levels.SaveWithLock(ctx, tl.level, tl.loadedAt); err != nil {
			return fmt.Errorf("updating stock level: %w", err)
		}
	}

	for _, batch := range batchSet {
		if err := s.batches.Save(ctx, batch); err != nil {
			return fmt.Errorf("saving batch %s: %w", batch.BatchNumber, err)
		}
	}

	dirty := make([]*CostLayer, 0)
	for _, layers := range layerSet {
		dirty = append(dirty, layers...)
	}
	if len(dirty) > 0 {
		if err := s.layers.SaveAll(ctx, dirty); err != nil {
			return fmt.Errorf("saving cost layers: %w", err)
		}
	}

	for id := range costTouched {
		if err := s.items.Save(ctx, items[id]); err != nil {
			return fmt.Errorf("saving item cost: %w", err)
		}
	}

	if err := entry.MarkPosted(postedBy); err != nil {
		return err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}
