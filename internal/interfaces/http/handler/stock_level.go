package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockLevelHandler exposes the stock balance projection API.
type StockLevelHandler struct {
	BaseHandler
	service *appinv.StockLevelService
}

func NewStockLevelHandler(service *appinv.StockLevelService) *StockLevelHandler {
	return &StockLevelHandler{service: service}
}

func (h *StockLevelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	company := rg.Group("/companies/:company_id")
	{
		company.GET("/stock-levels/balance", h.GetBalance)
		company.GET("/stock-levels/low", h.ListLowStock)
		company.POST("/stock-levels/rebuild", h.Rebuild)
		company.GET("/items/:item_id/stock-levels", h.ListByItem)
		company.GET("/warehouses/:warehouse_id/stock-levels", h.ListByWarehouse)
		company.GET("/movements", h.ListMovementsByKey)
		company.GET("/items/:item_id/movements", h.ListMovementsByItem)
		company.GET("/stock-entries/:entry_id/movements", h.ListMovementsByEntry)
	}
}

// balanceKeyQuery binds the (item, warehouse, bin) key from query parameters.
type balanceKeyQuery struct {
	ItemID      uuid.UUID `form:"item_id" binding:"required"`
	WarehouseID uuid.UUID `form:"warehouse_id" binding:"required"`
	Bin         string    `form:"bin"`
}

func (h *StockLevelHandler) GetBalance(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var q balanceKeyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, shared.NewValidationError("INVALID_QUERY", err.Error()))
		return
	}
	level, err := h.service.GetBalance(c.Request.Context(), company, q.ItemID, q.WarehouseID, q.Bin)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, level)
}

func (h *StockLevelHandler) ListByItem(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	itemID, err := pathUUID(c, "item_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	levels, err := h.service.ListBalancesByItem(c.Request.Context(), company, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, levels)
}

func (h *StockLevelHandler) ListByWarehouse(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	warehouseID, err := pathUUID(c, "warehouse_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	levels, err := h.service.ListBalancesByWarehouse(c.Request.Context(), company, warehouseID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, levels)
}

func (h *StockLevelHandler) ListLowStock(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	levels, err := h.service.ListLowStock(c.Request.Context(), company)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, levels)
}

func (h *StockLevelHandler) ListMovementsByKey(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var q balanceKeyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, shared.NewValidationError("INVALID_QUERY", err.Error()))
		return
	}
	movements, err := h.service.ListMovementsByKey(c.Request.Context(), company, q.ItemID, q.WarehouseID, q.Bin)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, movements)
}

func (h *StockLevelHandler) ListMovementsByItem(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	itemID, err := pathUUID(c, "item_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	movements, err := h.service.ListMovementsByItem(c.Request.Context(), company, itemID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, movements)
}

func (h *StockLevelHandler) ListMovementsByEntry(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	entryID, err := pathUUID(c, "entry_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	movements, err := h.service.ListMovementsByEntry(c.Request.Context(), company, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, movements)
}

// rebuildRequest names the projection key to rebuild.
type rebuildRequest struct {
	ItemID      uuid.UUID `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
	Bin         string    `json:"bin"`
}

func (h *StockLevelHandler) Rebuild(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var req rebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.service.Rebuild(c.Request.Context(), company, req.ItemID, req.WarehouseID, req.Bin)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}
