package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common response and parameter helpers.
type BaseHandler struct{}

// Success sends a 200 with a success envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 with a success envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error translates an error into the appropriate HTTP response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	status, body := dto.FromError(err)
	_ = c.Error(err)
	c.JSON(status, body)
}

// BadRequest sends a 400 for malformed request payloads.
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_REQUEST", err.Error()))
}

// companyID extracts the explicit company scope from the route.
func companyID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("INVALID_COMPANY", "Malformed company id")
	}
	return id, nil
}

// pathUUID parses a uuid path parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewValidationErrorf("INVALID_ID", "Malformed %s", name)
	}
	return id, nil
}

// listFilter binds the common pagination query parameters.
func listFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, shared.NewValidationError("INVALID_QUERY", err.Error())
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}, nil
}
