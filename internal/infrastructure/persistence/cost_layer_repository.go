package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// GormCostLayerRepository implements inventory.CostLayerRepository using GORM.
type GormCostLayerRepository struct {
	db *gorm.DB
}

// NewGormCostLayerRepository creates a GormCostLayerRepository.
func NewGormCostLayerRepository(db *gorm.DB) *GormCostLayerRepository {
	return &GormCostLayerRepository{db: db}
}

// FindOpenByKey returns unconsumed layers for a key in sequence order.
func (r *GormCostLayerRepository) FindOpenByKey(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) ([]*inventory.CostLayer, error) {
	var layers []*inventory.CostLayer
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ? AND warehouse_id = ? AND bin = ? AND consumed = ?",
			companyID, itemID, warehouseID, bin, false).
		Order("sequence ASC").
		Find(&layers).Error; err != nil {
		return nil, err
	}
	return layers, nil
}

// NextSequence allocates the next layer sequence for a key.
func (r *GormCostLayerRepository) NextSequence(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&inventory.CostLayer{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("company_id = ? AND item_id = ? AND warehouse_id = ? AND bin = ?", companyID, itemID, warehouseID, bin).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Save creates or updates a layer.
func (r *GormCostLayerRepository) Save(ctx context.Context, layer *inventory.CostLayer) error {
	return r.db.WithContext(ctx).Save(layer).Error
}

// SaveAll creates or updates layers in one call.
func (r *GormCostLayerRepository) SaveAll(ctx context.Context, layers []*inventory.CostLayer) error {
	if len(layers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(layers).Error
}

var _ inventory.CostLayerRepository = (*GormCostLayerRepository)(nil)
