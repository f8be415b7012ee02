package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormBatchRepository implements inventory.BatchRepository using GORM.
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a GormBatchRepository.
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by ID within a company.
func (r *GormBatchRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
		}
		return nil, err
	}
	return &batch, nil
}

// FindByNumber finds a batch by its (item, batch number) identity.
func (r *GormBatchRepository) FindByNumber(ctx context.Context, companyID, itemID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ? AND batch_number = ?", companyID, itemID, batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("BATCH_NOT_FOUND", "Batch not found")
		}
		return nil, err
	}
	return &batch, nil
}

// FindByItem returns batches of an item. With onlyWithStock the set is
// filtered in memory on the derived on-hand quantity.
func (r *GormBatchRepository) FindByItem(ctx context.Context, companyID, itemID uuid.UUID, onlyWithStock bool) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND item_id = ?", companyID, itemID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	if !onlyWithStock {
		return batches, nil
	}
	withStock := make([]inventory.Batch, 0, len(batches))
	for i := range batches {
		if batches[i].HasStock() {
			withStock = append(withStock, batches[i])
		}
	}
	return withStock, nil
}

// FindExpired returns enabled batches whose expiry date has passed.
func (r *GormBatchRepository) FindExpired(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND disabled = ? AND expiry_date IS NOT NULL AND expiry_date < ?", companyID, false, asOf).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringWithin returns enabled batches expiring inside the window.
func (r *GormBatchRepository) FindExpiringWithin(ctx context.Context, companyID uuid.UUID, days int) ([]inventory.Batch, error) {
	now := time.Now()
	limit := now.AddDate(0, 0, days)
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND disabled = ? AND expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?",
			companyID, false, now, limit).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// ExistsByNumber checks the (item, batch number) uniqueness constraint.
func (r *GormBatchRepository) ExistsByNumber(ctx context.Context, companyID, itemID uuid.UUID, batchNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.Batch{}).
		Where("company_id = ? AND item_id = ? AND batch_number = ?", companyID, itemID, batchNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a batch.
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
