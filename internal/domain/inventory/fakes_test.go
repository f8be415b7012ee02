package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// In-memory repository fakes for exercising the posting service without a
// database. Writes are tracked so tests can assert what a transaction would
// have committed.

type fakeItemRepo struct {
	items map[uuid.UUID]*catalog.Item
	saved []*catalog.Item
}

func newFakeItemRepo(items ...*catalog.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeItemRepo) FindByID(_ context.Context, _, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
	}
	return item, nil
}

func (r *fakeItemRepo) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*catalog.Item, error) {
	for _, it := range r.items {
		if it.SKU == sku {
			return it, nil
		}
	}
	return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
}

func (r *fakeItemRepo) FindAll(_ context.Context, _ uuid.UUID, includeInactive bool, _ shared.Filter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range r.items {
		if it.Active || includeInactive {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) ExistsBySKU(_ context.Context, _ uuid.UUID, sku string) (bool, error) {
	for _, it := range r.items {
		if it.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.items[item.ID] = item
	r.saved = append(r.saved, item)
	return nil
}

func (r *fakeItemRepo) Count(_ context.Context, _ uuid.UUID, _ bool) (int64, error) {
	return int64(len(r.items)), nil
}

type fakeEntryRepo struct {
	entries map[uuid.UUID]*StockEntry
	nextSeq int64
	saveErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]*StockEntry)}
}

func (r *fakeEntryRepo) FindByID(_ context.Context, _, id uuid.UUID) (*StockEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
	}
	return e, nil
}

func (r *fakeEntryRepo) FindByEntryNumber(_ context.Context, _ uuid.UUID, number string) (*StockEntry, error) {
	for _, e := range r.entries {
		if e.EntryNumber == number {
			return e, nil
		}
	}
	return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
}

func (r *fakeEntryRepo) FindAll(_ context.Context, _ uuid.UUID, state EntryState, _, _ *time.Time, _ shared.Filter) ([]StockEntry, error) {
	var out []StockEntry
	for _, e := range r.entries {
		if state == "" || e.State == state {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) Save(_ context.Context, entry *StockEntry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeEntryRepo) Delete(_ context.Context, _, id uuid.UUID) error {
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

func (r *fakeEntryRepo) NextEntryNumber(_ context.Context, _ uuid.UUID, date time.Time) (string, error) {
	r.nextSeq++
	return fmt.Sprintf("SE-%s-%04d", date.Format("20060102"), r.nextSeq), nil
}

func (r *fakeEntryRepo) Count(_ context.Context, _ uuid.UUID, state EntryState) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if state == "" || e.State == state {
			n++
		}
	}
	return n, nil
}

type fakeMovementRepo struct {
	movements []*StockMovement
	saveErr   error
}

func (r *fakeMovementRepo) SaveAll(_ context.Context, movements []*StockMovement) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) FindByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) ([]StockMovement, error) {
	var out []StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID && m.WarehouseID == warehouseID && m.Bin == bin {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *fakeMovementRepo) FindByItem(_ context.Context, _, itemID uuid.UUID, _ shared.Filter) ([]StockMovement, error) {
	var out []StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByEntry(_ context.Context, _, entryID uuid.UUID) ([]StockMovement, error) {
	var out []StockMovement
	for _, m := range r.movements {
		if m.StockEntryID == entryID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type levelRepoKey struct {
	itemID      uuid.UUID
	warehouseID uuid.UUID
	bin         string
}

type fakeLevelRepo struct {
	levels  map[levelRepoKey]*StockLevel
	saveErr error
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{levels: make(map[levelRepoKey]*StockLevel)}
}

func (r *fakeLevelRepo) put(level *StockLevel) {
	r.levels[levelRepoKey{level.ItemID, level.WarehouseID, level.Bin}] = level
}

func (r *fakeLevelRepo) FindByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) (*StockLevel, error) {
	l, ok := r.levels[levelRepoKey{itemID, warehouseID, bin}]
	if !ok {
		return nil, shared.NewNotFoundError("LEVEL_NOT_FOUND", "Stock level not found")
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLevelRepo) FindByItem(_ context.Context, _, itemID uuid.UUID) ([]StockLevel, error) {
	var out []StockLevel
	for _, l := range r.levels {
		if l.ItemID == itemID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) FindByWarehouse(_ context.Context, _, warehouseID uuid.UUID, _ shared.Filter) ([]StockLevel, error) {
	var out []StockLevel
	for _, l := range r.levels {
		if l.WarehouseID == warehouseID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) FindBelowReorderLevel(_ context.Context, _ uuid.UUID) ([]StockLevel, error) {
	return nil, nil
}

func (r *fakeLevelRepo) Save(_ context.Context, level *StockLevel) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.put(level)
	return nil
}

func (r *fakeLevelRepo) SaveWithLock(_ context.Context, level *StockLevel, expectedVersion int) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	key := levelRepoKey{level.ItemID, level.WarehouseID, level.Bin}
	current, ok := r.levels[key]
	if !ok || current.Version != expectedVersion {
		return shared.NewConcurrencyConflict("OPTIMISTIC_LOCK_FAILED", "Stock level changed concurrently")
	}
	r.put(level)
	return nil
}

type fakeBatchRepo struct {
	batches map[uuid.UUID]*Batch
}

func newFakeBatchRepo(batches ...*Batch) *fakeBatchRepo {
	r := &fakeBatchRepo{batches: make(map[uuid.UUID]*Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *fakeBatchRepo) FindByID(_ context.Context, _, id uuid.UUID) (*Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
	}
	return b, nil
}

func (r *fakeBatchRepo) FindByNumber(_ context.Context, _, itemID uuid.UUID, number string) (*Batch, error) {
	for _, b := range r.batches {
		if b.ItemID == itemID && b.BatchNumber == number {
			return b, nil
		}
	}
	return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
}

func (r *fakeBatchRepo) FindByItem(_ context.Context, _, itemID uuid.UUID, onlyWithStock bool) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if b.ItemID == itemID && (!onlyWithStock || b.HasStock()) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindExpired(_ context.Context, _ uuid.UUID, asOf time.Time) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if !b.Disabled && b.ExpiryDate != nil && b.ExpiryDate.Before(asOf) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindExpiringWithin(_ context.Context, _ uuid.UUID, days int) ([]Batch, error) {
	var out []Batch
	horizon := time.Now().AddDate(0, 0, days)
	for _, b := range r.batches {
		if !b.Disabled && b.ExpiryDate != nil && b.ExpiryDate.Before(horizon) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) ExistsByNumber(_ context.Context, _, itemID uuid.UUID, number string) (bool, error) {
	for _, b := range r.batches {
		if b.ItemID == itemID && b.BatchNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *Batch) error {
	r.batches[batch.ID] = batch
	return nil
}

type fakeLayerRepo struct {
	layers []*CostLayer
}

func (r *fakeLayerRepo) FindOpenByKey(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) ([]*CostLayer, error) {
	var out []*CostLayer
	for _, l := range r.layers {
		if l.ItemID == itemID && l.WarehouseID == warehouseID && l.Bin == bin && !l.Consumed {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *fakeLayerRepo) NextSequence(_ context.Context, _, itemID, warehouseID uuid.UUID, bin string) (int64, error) {
	var max int64
	for _, l := range r.layers {
		if l.ItemID == itemID && l.WarehouseID == warehouseID && l.Bin == bin && l.Sequence > max {
			max = l.Sequence
		}
	}
	return max + 1, nil
}

func (r *fakeLayerRepo) Save(_ context.Context, layer *CostLayer) error {
	for i, l := range r.layers {
		if l.ID == layer.ID {
			r.layers[i] = layer
			return nil
		}
	}
	r.layers = append(r.layers, layer)
	return nil
}

func (r *fakeLayerRepo) SaveAll(ctx context.Context, layers []*CostLayer) error {
	for _, l := range layers {
		if err := r.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
