package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormItemRepository implements catalog.ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID within a company.
func (r *GormItemRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKU finds an item by its SKU within a company.
func (r *GormItemRepository) FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND sku = ?", companyID, sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
		}
		return nil, err
	}
	return &item, nil
}

// FindAll finds items for a company.
func (r *GormItemRepository) FindAll(ctx context.Context, companyID uuid.UUID, includeInactive bool, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := r.db.WithContext(ctx).Model(&catalog.Item{}).
		Where("company_id = ?", companyID)
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	if err := applyFilter(query, filter).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ExistsBySKU checks whether a SKU is taken within a company.
func (r *GormItemRepository) ExistsBySKU(ctx context.Context, companyID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Item{}).
		Where("company_id = ? AND sku = ?", companyID, sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an item.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Count counts items for a company.
func (r *GormItemRepository) Count(ctx context.Context, companyID uuid.UUID, includeInactive bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Item{}).
		Where("company_id = ?", companyID)
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)

// applyFilter adds ordering and pagination to a query.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}
	return query.Order(orderBy + " " + dir).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}
