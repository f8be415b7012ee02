package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/shared/valueobject"
)

// GormStockEntryRepository implements inventory.StockEntryRepository using GORM.
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a GormStockEntryRepository.
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// FindByID finds an entry with its details and additional costs.
func (r *GormStockEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.StockEntry, error) {
	var entry inventory.StockEntry
	if err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("AdditionalCosts").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

// FindByEntryNumber finds an entry by its human-readable number.
func (r *GormStockEntryRepository) FindByEntryNumber(ctx context.Context, companyID uuid.UUID, entryNumber string) (*inventory.StockEntry, error) {
	var entry inventory.StockEntry
	if err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("AdditionalCosts").
		Where("company_id = ? AND entry_number = ?", companyID, entryNumber).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ENTRY_NOT_FOUND", "Stock entry not found")
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds entries filtered by state and date range.
func (r *GormStockEntryRepository) FindAll(ctx context.Context, companyID uuid.UUID, state inventory.EntryState, from, to *time.Time, filter shared.Filter) ([]inventory.StockEntry, error) {
	var entries []inventory.StockEntry
	query := r.db.WithContext(ctx).Model(&inventory.StockEntry{}).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("AdditionalCosts").
		Where("company_id = ?", companyID)
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if from != nil {
		query = query.Where("entry_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("entry_date <= ?", *to)
	}
	if err := applyFilter(query, filter).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save creates or updates an entry together with its lines. Removed lines
// are deleted so the stored set mirrors the aggregate exactly.
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}

		detailIDs := make([]uuid.UUID, 0, len(entry.Details))
		for i := range entry.Details {
			detailIDs = append(detailIDs, entry.Details[i].ID)
		}
		cleanup := tx.Where("stock_entry_id = ?", entry.ID)
		if len(detailIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", detailIDs)
		}
		if err := cleanup.Delete(&inventory.StockEntryDetail{}).Error; err != nil {
			return err
		}

		costIDs := make([]uuid.UUID, 0, len(entry.AdditionalCosts))
		for i := range entry.AdditionalCosts {
			costIDs = append(costIDs, entry.AdditionalCosts[i].ID)
		}
		cleanup = tx.Where("stock_entry_id = ?", entry.ID)
		if len(costIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", costIDs)
		}
		return cleanup.Delete(&inventory.StockEntryAdditionalCost{}).Error
	})
}

// Delete removes a draft entry and its lines. Posted entries are refused.
func (r *GormStockEntryRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("company_id = ? AND id = ? AND state = ?", companyID, id, inventory.EntryStateDraft).
			Delete(&inventory.StockEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewInvalidStateError("ENTRY_NOT_DELETABLE",
				"Stock entry does not exist or is not a draft")
		}
		if err := tx.Where("stock_entry_id = ?", id).Delete(&inventory.StockEntryDetail{}).Error; err != nil {
			return err
		}
		return tx.Where("stock_entry_id = ?", id).Delete(&inventory.StockEntryAdditionalCost{}).Error
	})
}

// NextEntryNumber allocates the next SE-YYYYMMDD-NNNN number for the company
// and date. The day's entries are counted from the stored maximum; the unique
// index on (company_id, entry_number) backstops races. Sequences past 9999
// grow the suffix, so the maximum is taken by suffix length before text order.
func (r *GormStockEntryRepository) NextEntryNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", valueobject.EntryNumberPrefix, date.Format("20060102"))

	var last string
	err := r.db.WithContext(ctx).Model(&inventory.StockEntry{}).
		Select("entry_number").
		Where("company_id = ? AND entry_number LIKE ?", companyID, prefix+"%").
		Order("LENGTH(entry_number) DESC, entry_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	var sequence int64 = 1
	if last != "" {
		raw := strings.TrimPrefix(last, prefix)
		n, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return "", fmt.Errorf("malformed entry number %q in store: %w", last, perr)
		}
		sequence = n + 1
	}
	return valueobject.NewEntryNumber(date, sequence).String(), nil
}

// Count counts entries for a company, optionally by state.
func (r *GormStockEntryRepository) Count(ctx context.Context, companyID uuid.UUID, state inventory.EntryState) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.StockEntry{}).
		Where("company_id = ?", companyID)
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)
