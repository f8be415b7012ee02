package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// In-memory collaborators for exercising the application services without a
// database or broker.

type memItemRepo struct {
	items map[uuid.UUID]*catalog.Item
}

func newMemItemRepo(items ...*catalog.Item) *memItemRepo {
	r := &memItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *memItemRepo) FindByID(_ context.Context, _, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
	}
	return item, nil
}

func (r *memItemRepo) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*catalog.Item, error) {
	for _, it := range r.items {
		if it.SKU == sku {
			return it, nil
		}
	}
	return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
}

func (r *memItemRepo) FindAll(_ context.Context, _ uuid.UUID, includeInactive bool, _ shared.Filter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range r.items {
		if it.Active || includeInactive {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memItemRepo) ExistsBySKU(_ context.Context, _ uuid.UUID, sku string) (bool, error) {
	for _, it := range r.items {
		if it.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *memItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *memItemRepo) Count(_ context.Context, _ uuid.UUID, _ bool) (int64, error) {
	return int64(len(r.items)), nil
}

// Get implements catalog.ItemLookup.
func (r *memItemRepo) Get(ctx context.Context, companyID, itemID uuid.UUID) (*catalog.Item, error) {
	return r.FindByID(ctx, companyID, itemID)
}

type memEntryRepo struct {
	entries map[uuid.UUID]*inventory.StockEntry
	nextSeq int64
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[uuid.UUID]*inventory.StockEntry)}
}

func (r *memEntryRepo) FindByID(_ context.Context, _, id uuid.UUID) (*inventory.StockEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
	}
	return e, nil
}

func (r *memEntryRepo) FindByEntryNumber(_ context.Context, _ uuid.UUID, number string) (*inventory.StockEntry, error) {
	for _, e := range r.entries {
		if e.EntryNumber == number {
			return e, nil
		}
	}
	return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
}

func (r *memEntryRepo) FindAll(_ context.Context, _ uuid.UUID, state inventory.EntryState, _, _ *time.Time, _ shared.Filter) ([]inventory.StockEntry, error) {
	var out []inventory.StockEntry
	for _, e := range r.entries {
		if state == "" || e.State == state {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) Save(_ context.Context, entry *inventory.StockEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	e, ok := r.entries[id]
	if !ok {
		return shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
	}
	if !e.IsDraft() {
		return shared.NewInvalidStateError("ENTRY_NOT_DELETABLE", "Only draft entries can be deleted")
	}
	delete(r.entries, id)
	return nil
}

func (r *memEntryRepo) NextEntryNumber(_ context.Context, _ uuid.UUID, date time.Time) (string, error) {
	r.nextSeq++
	return fmt.Sprintf("SE-%s-%04d", date.Format("20060102"), r.nextSeq), nil
}

func (r *memEntryRepo) Count(_ context.Context, _ uuid.UUID, state inventory.EntryState) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if state == "" || e.State == state {
			n++
		}
	}
	return n, nil
}

type memMovementRepo struct {
	movements []*inventory.StockMovement
}

func (r *memMovementRepo) SaveAll(_ context.Context, movements []*inventory.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memMovementRepo) FindByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID && m.WarehouseID == warehouseID && m.Bin == bin {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memMovementRepo) FindByItem(_ context.Context, _, itemID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByEntry(_ context.Context, _, entryID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.StockEntryID == entryID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type memLevelKey struct {
	itemID      uuid.UUID
	warehouseID uuid.UUID
	bin         string
}

type memLevelRepo struct {
	levels map[memLevelKey]*inventory.StockLevel
}

func newMemLevelRepo() *memLevelRepo {
	return &memLevelRepo{levels: make(map[memLevelKey]*inventory.StockLevel)}
}

func (r *memLevelRepo) put(level *inventory.StockLevel) {
	r.levels[memLevelKey{level.ItemID, level.WarehouseID, level.Bin}] = level
}

func (r *memLevelRepo) FindByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) (*inventory.StockLevel, error) {
	l, ok := r.levels[memLevelKey{itemID, warehouseID, bin}]
	if !ok {
		return nil, shared.NewNotFoundError("LEVEL_NOT_FOUND", "Stock level not found")
	}
	copied := *l
	return &copied, nil
}

func (r *memLevelRepo) FindByItem(_ context.Context, _, itemID uuid.UUID) ([]inventory.StockLevel, error) {
	var out []inventory.StockLevel
	for _, l := range r.levels {
		if l.ItemID == itemID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLevelRepo) FindByWarehouse(_ context.Context, _, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockLevel, error) {
	var out []inventory.StockLevel
	for _, l := range r.levels {
		if l.WarehouseID == warehouseID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLevelRepo) FindBelowReorderLevel(_ context.Context, _ uuid.UUID) ([]inventory.StockLevel, error) {
	return nil, nil
}

func (r *memLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	r.put(level)
	return nil
}

func (r *memLevelRepo) SaveWithLock(_ context.Context, level *inventory.StockLevel, expectedVersion int) error {
	current, ok := r.levels[memLevelKey{level.ItemID, level.WarehouseID, level.Bin}]
	if !ok || current.Version != expectedVersion {
		return shared.NewConcurrencyConflict("OPTIMISTIC_LOCK_FAILED", "Stock level changed concurrently")
	}
	r.put(level)
	return nil
}

type memBatchRepo struct {
	batches map[uuid.UUID]*inventory.Batch
}

func newMemBatchRepo(batches ...*inventory.Batch) *memBatchRepo {
	r := &memBatchRepo{batches: make(map[uuid.UUID]*inventory.Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *memBatchRepo) FindByID(_ context.Context, _, id uuid.UUID) (*inventory.Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
	}
	return b, nil
}

func (r *memBatchRepo) FindByNumber(_ context.Context, _, itemID uuid.UUID, number string) (*inventory.Batch, error) {
	for _, b := range r.batches {
		if b.ItemID == itemID && b.BatchNumber == number {
			return b, nil
		}
	}
	return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
}

func (r *memBatchRepo) FindByItem(_ context.Context, _, itemID uuid.UUID, onlyWithStock bool) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.batches {
		if b.ItemID == itemID && (!onlyWithStock || b.HasStock()) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) FindExpired(_ context.Context, _ uuid.UUID, asOf time.Time) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.batches {
		if !b.Disabled && b.ExpiryDate != nil && b.ExpiryDate.Before(asOf) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) FindExpiringWithin(_ context.Context, _ uuid.UUID, days int) ([]inventory.Batch, error) {
	var out []inventory.Batch
	horizon := time.Now().AddDate(0, 0, days)
	for _, b := range r.batches {
		if !b.Disabled && b.ExpiryDate != nil && b.ExpiryDate.Before(horizon) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) ExistsByNumber(_ context.Context, _, itemID uuid.UUID, number string) (bool, error) {
	for _, b := range r.batches {
		if b.ItemID == itemID && b.BatchNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	r.batches[batch.ID] = batch
	return nil
}

type memLayerRepo struct {
	layers []*inventory.CostLayer
}

func (r *memLayerRepo) FindOpenByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) ([]*inventory.CostLayer, error) {
	var out []*inventory.CostLayer
	for _, l := range r.layers {
		if l.ItemID == itemID && l.WarehouseID == warehouseID && l.Bin == bin && !l.Consumed {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memLayerRepo) NextSequence(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) (int64, error) {
	var max int64
	for _, l := range r.layers {
		if l.ItemID == itemID && l.WarehouseID == warehouseID && l.Bin == bin && l.Sequence > max {
			max = l.Sequence
		}
	}
	return max + 1, nil
}

func (r *memLayerRepo) Save(_ context.Context, layer *inventory.CostLayer) error {
	for i, l := range r.layers {
		if l.ID == layer.ID {
			r.layers[i] = layer
			return nil
		}
	}
	r.layers = append(r.layers, layer)
	return nil
}

func (r *memLayerRepo) SaveAll(ctx context.Context, layers []*inventory.CostLayer) error {
	for _, l := range layers {
		if err := r.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// capturingPublisher records every published event.
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// memLevelCache is a LevelCache backed by a map, with call counters.
type memLevelCache struct {
	entries     map[memLevelKey]*StockLevelResponse
	hits        int
	sets        int
	invalidated int
}

func newMemLevelCache() *memLevelCache {
	return &memLevelCache{entries: make(map[memLevelKey]*StockLevelResponse)}
}

func (c *memLevelCache) Get(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) (*StockLevelResponse, error) {
	resp, ok := c.entries[memLevelKey{itemID, warehouseID, bin}]
	if !ok {
		return nil, nil
	}
	c.hits++
	return resp, nil
}

func (c *memLevelCache) Set(_ context.Context, _ uuid.UUID, level *StockLevelResponse) error {
	c.entries[memLevelKey{level.ItemID, level.WarehouseID, level.Bin}] = level
	c.sets++
	return nil
}

func (c *memLevelCache) Invalidate(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) error {
	delete(c.entries, memLevelKey{itemID, warehouseID, bin})
	c.invalidated++
	return nil
}
