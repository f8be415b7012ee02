package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
)

// CreateItemRequest represents a request to create a catalog item.
type CreateItemRequest struct {
	SKU             string          `json:"sku" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit" binding:"required"`
	SellingPrice    decimal.Decimal `json:"selling_price" binding:"required"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	ValuationMethod string          `json:"valuation_method" binding:"omitempty,oneof=standard weighted_average fifo"`
}

// UpdatePricingRequest updates an item's prices.
type UpdatePricingRequest struct {
	SellingPrice decimal.Decimal  `json:"selling_price" binding:"required"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
}

// SetReorderLevelsRequest updates an item's reorder thresholds.
type SetReorderLevelsRequest struct {
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// SetValuationMethodRequest changes an item's costing policy.
type SetValuationMethodRequest struct {
	ValuationMethod string `json:"valuation_method" binding:"required,oneof=standard weighted_average fifo"`
}

// ItemResponse represents a catalog item in API responses.
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	CompanyID       uuid.UUID       `json:"company_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Unit            string          `json:"unit"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	LastKnownCost   decimal.Decimal `json:"last_known_cost"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	ValuationMethod string          `json:"valuation_method"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToItemResponse converts a domain item to its response shape.
func ToItemResponse(item *catalog.Item) *ItemResponse {
	return &ItemResponse{
		ID:              item.ID,
		CompanyID:       item.CompanyID,
		SKU:             item.SKU,
		Name:            item.Name,
		Category:        item.Category,
		Unit:            item.Unit,
		SellingPrice:    item.SellingPrice,
		CostPrice:       item.CostPrice,
		LastKnownCost:   item.LastKnownCost,
		ReorderLevel:    item.ReorderLevel,
		ReorderQuantity: item.ReorderQuantity,
		ValuationMethod: item.ValuationMethod.String(),
		Active:          item.Active,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
		Version:         item.Version,
	}
}
