package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormStockMovementRepository implements the append-only movement ledger
// using GORM. Movements are only ever inserted.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a GormStockMovementRepository.
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// SaveAll appends movements to the ledger.
func (r *GormStockMovementRepository) SaveAll(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByKey returns all movements for one key in sequence order.
func (r *GormStockMovementRepository) FindByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ? AND warehouse_id = ? AND bin = ?", companyID, itemID, warehouseID, bin).
		Order("sequence ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByItem returns an item's movements across locations, newest first.
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, companyID, itemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("company_id = ? AND item_id = ?", companyID, itemID).
		Order("movement_date DESC, sequence DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByEntry returns the movements one stock entry produced.
func (r *GormStockMovementRepository) FindByEntry(ctx context.Context, companyID, stockEntryID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND stock_entry_id = ?", companyID, stockEntryID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
