package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormStockLevelRepository implements inventory.StockLevelRepository using GORM.
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a GormStockLevelRepository.
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByKey finds the projection for one (item, warehouse, bin) key.
func (r *GormStockLevelRepository) FindByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ? AND warehouse_id = ? AND bin = ?", companyID, itemID, warehouseID, bin).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("LEVEL_NOT_FOUND", "Stock level not found")
		}
		return nil, err
	}
	return &level, nil
}

// FindByItem returns all location balances for an item.
func (r *GormStockLevelRepository) FindByItem(ctx context.Context, companyID, itemID uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ?", companyID, itemID).
		Order("warehouse_id ASC, bin ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByWarehouse returns the balances held in a warehouse.
func (r *GormStockLevelRepository) FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("company_id = ? AND warehouse_id = ?", companyID, warehouseID)
	if err := applyFilter(query, filter).Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindBelowReorderLevel returns levels whose quantity is below the owning
// item's reorder level.
func (r *GormStockLevelRepository) FindBelowReorderLevel(ctx context.Context, companyID uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = stock_levels.item_id").
		Where("stock_levels.company_id = ? AND items.reorder_level > 0 AND stock_levels.quantity < items.reorder_level", companyID).
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Save creates a projection row.
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock updates a projection row guarded by the version it was loaded
// at. Zero rows affected means another transaction got there first.
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, expectedVersion).
		Updates(map[string]any{
			"quantity":         level.Quantity,
			"avg_cost":         level.AvgCost,
			"movement_count":   level.MovementCount,
			"last_movement_id": level.LastMovementID,
			"last_movement_at": level.LastMovementAt,
			"version":          level.Version,
			"updated_at":       level.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyConflict("OPTIMISTIC_LOCK_FAILED",
			"Stock level was modified by another transaction")
	}
	return nil
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
