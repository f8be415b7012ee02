package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// BatchHandler exposes the batch registry API.
type BatchHandler struct {
	BaseHandler
	service *appinv.BatchService
}

func NewBatchHandler(service *appinv.BatchService) *BatchHandler {
	return &BatchHandler{service: service}
}

func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/companies/:company_id/batches")
	{
		batches.POST("", h.Create)
		batches.GET("/:batch_id", h.Get)
		batches.GET("/expired", h.ListExpired)
		batches.GET("/expiring", h.ListExpiring)
		batches.PUT("/:batch_id/retain-sample", h.SetRetainSample)
		batches.POST("/:batch_id/disable", h.Disable)
	}
	rg.GET("/companies/:company_id/items/:item_id/batches", h.ListByItem)
}

func (h *BatchHandler) Create(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	var req appinv.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	batch, err := h.service.CreateBatch(c.Request.Context(), company, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, batch)
}

func (h *BatchHandler) Get(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	batchID, err := pathUUID(c, "batch_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	batch, err := h.service.GetBatch(c.Request.Context(), company, batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batch)
}

func (h *BatchHandler) ListByItem(c *gin.Context) {
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
	onlyWithStock := c.Query("only_with_stock") == "true"
	batches, err := h.service.ListBatches(c.Request.Context(), company, itemID, onlyWithStock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batches)
}

func (h *BatchHandler) ListExpired(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	batches, err := h.service.ListExpired(c.Request.Context(), company)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batches)
}

func (h *BatchHandler) ListExpiring(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		h.Error(c, shared.NewValidationError("INVALID_DAYS", "days must be a positive integer"))
		return
	}
	batches, err := h.service.ListExpiringWithin(c.Request.Context(), company, days)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batches)
}

func (h *BatchHandler) SetRetainSample(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	batchID, err := pathUUID(c, "batch_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	var req appinv.SetRetainSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	batch, err := h.service.SetRetainSample(c.Request.Context(), company, batchID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batch)
}

func (h *BatchHandler) Disable(c *gin.Context) {
	company, err := companyID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	batchID, err := pathUUID(c, "batch_id")
	if err != nil {
		h.Error(c, err)
		return
	}
	batch, err := h.service.DisableBatch(c.Request.Context(), company, batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, batch)
}
