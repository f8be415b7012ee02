package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockEntryHandler exposes the stock entry ledger API.
type StockEntryHandler struct {
	BaseHandler
	service *appinv.StockEntryService
}

func NewStockEntryHandler(service *appinv.StockEntryService) *StockEntryHandler {
	return &StockEntryHandler{service: service}
}

func (h *StockEntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/companies/:company_id/stock-entries")
	{
		entries.POST("", h.Create)
		entries.GET("", h.List)
		entries.GET("/:entry_id", h.Get)
		entries.GET("/number/:number", h.GetByNumber)
		entries.PUT("/:entry_id", h.Update)
		entries.DELETE("/:entry_id", h.Delete)
		entries.POST("/:entry_id/details", h.AddDetail)
		entries.DELETE("/:entry_id/details/:detail_id", h.RemoveDetail)
		entries.POST("/:entry_id/additional-costs", h.AddAdditionalCost)
		entries.DELETE("/:entry_id/additional-costs/:cost_id", h.RemoveAdditionalCost)
		entries.POST("/:entry_id/submit", h.Submit)
		entries.POST("/:entry_id/reject", h.Reject)
	}
	rg.POST("/companies/:company_id/stock-receipts", h.ReceiveStock)
}

func (h *StockEntryHandler) Create(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var req appinv.CreateStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.CreateEntry(c.Request.Context(), company, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

func (h *StockEntryHandler) Get(c *gin.Context) {
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
	entry, err := h.service.GetEntry(c.Request.Context(), company, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) GetByNumber(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	entry, err := h.service.GetEntryByNumber(c.Request.Context(), company, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) List(c *gin.Context) {
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
	state := inventory.EntryState(c.Query("state"))
	from, err := parseDateQuery(c, "from")
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		h.Error(c, err)
		return
	}
	page, err := h.service.ListEntries(c.Request.Context(), company, state, from, to, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *StockEntryHandler) Update(c *gin.Context) {
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
	var req appinv.UpdateStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.UpdateEntry(c.Request.Context(), company, entryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) Delete(c *gin.Context) {
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
	if err := h.service.DeleteEntry(c.Request.Context(), company, entryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *StockEntryHandler) AddDetail(c *gin.Context) {
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
	var req appinv.DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.AddDetail(c.Request.Context(), company, entryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) RemoveDetail(c *gin.Context) {
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
	detailID, err := pathUUID(c, "detail_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	entry, err := h.service.RemoveDetail(c.Request.Context(), company, entryID, detailID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) AddAdditionalCost(c *gin.Context) {
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
	var req appinv.AdditionalCostIn
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.AddAdditionalCost(c.Request.Context(), company, entryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) RemoveAdditionalCost(c *gin.Context) {
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
	costID, err := pathUUID(c, "cost_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	entry, err := h.service.RemoveAdditionalCost(c.Request.Context(), company, entryID, costID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) Submit(c *gin.Context) {
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
	var req appinv.SubmitStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.SubmitEntry(c.Request.Context(), company, entryID, req.PostedBy)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) Reject(c *gin.Context) {
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
	var req appinv.RejectStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.RejectEntry(c.Request.Context(), company, entryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *StockEntryHandler) ReceiveStock(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var req appinv.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	entry, err := h.service.ReceiveStock(c.Request.Context(), company, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// parseDateQuery reads an optional RFC 3339 date query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return nil, shared.NewValidationErrorf("INVALID_DATE", "Malformed %s date", name)
	}
	return &t, nil
}
