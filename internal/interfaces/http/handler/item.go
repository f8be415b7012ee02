package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
)

// ItemHandler exposes the item catalog API.
type ItemHandler struct {
	BaseHandler
	service *appcatalog.ItemService
}

func NewItemHandler(service *appcatalog.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/companies/:company_id/items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:item_id", h.Get)
		items.GET("/sku/:sku", h.GetBySKU)
		items.PUT("/:item_id/pricing", h.UpdatePricing)
		items.PUT("/:item_id/reorder-levels", h.SetReorderLevels)
		items.PUT("/:item_id/valuation-method", h.SetValuationMethod)
		items.POST("/:item_id/deactivate", h.Deactivate)
		items.POST("/:item_id/activate", h.Activate)
	}
}

func (h *ItemHandler) Create(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var req appcatalog.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	item, err := h.service.CreateItem(c.Request.Context(), company, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ItemHandler) Get(c *gin.Context) {
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
	item, err := h.service.GetItem(c.Request.Context(), company, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) GetBySKU(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	item, err := h.service.GetItemBySKU(c.Request.Context(), company, c.Param("sku"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) List(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	page, err := h.service.ListItems(c.Request.Context(), company, includeInactive, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ItemHandler) UpdatePricing(c *gin.Context) {
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
	var req appcatalog.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	item, err := h.service.UpdatePricing(c.Request.Context(), company, itemID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) SetReorderLevels(c *gin.Context) {
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
	var req appcatalog.SetReorderLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	item, err := h.service.SetReorderLevels(c.Request.Context(), company, itemID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) SetValuationMethod(c *gin.Context) {
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
	var req appcatalog.SetValuationMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	item, err := h.service.SetValuationMethod(c.Request.Context(), company, itemID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) Deactivate(c *gin.Context) {
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
	item, err := h.service.DeactivateItem(c.Request.Context(), company, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) Activate(c *gin.Context) {
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
	item, err := h.service.ActivateItem(c.Request.Context(), company, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, item)
}
