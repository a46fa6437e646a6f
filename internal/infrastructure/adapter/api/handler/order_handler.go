package handler

import (
	"net/http"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	domainerr "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/fulfillment"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order lifecycle HTTP requests
type OrderHandler struct {
	engine *fulfillment.Engine
	logger coreport.Logger
}

// NewOrderHandler creates a new order handler instance
func NewOrderHandler(engine *fulfillment.Engine, logger coreport.Logger) *OrderHandler {
	return &OrderHandler{
		engine: engine,
		logger: logger,
	}
}

// Create handles the POST /orders endpoint
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	unitPriceCents, err := entity.ParseAmount(req.UnitPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	var discountCents int64
	if req.Discount != "" {
		discountCents, err = entity.ParseAmount(req.Discount)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	order, err := h.engine.CreateOrder(c.Request.Context(), req.OwnerID, req.ProductID,
		req.Quantity, unitPriceCents, discountCents, entity.DeliveryMode(req.DeliveryMode), req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderToResponse(order))
}

// Process handles the POST /orders/:orderNumber/process endpoint
func (h *OrderHandler) Process(c *gin.Context) {
	var req dto.ProcessOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	var order *entity.Order
	err := withConflictRetry(c, h.logger, func() error {
		var opErr error
		order, opErr = h.engine.Process(c.Request.Context(), c.Param("orderNumber"), req.Actor)
		return opErr
	})
	if err != nil {
		// Insufficient funds and inventory shortfalls return the order state
		// alongside the error so the caller sees where it stopped.
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// Cancel handles the POST /orders/:orderNumber/cancel endpoint
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	var order *entity.Order
	err := withConflictRetry(c, h.logger, func() error {
		var opErr error
		order, opErr = h.engine.Cancel(c.Request.Context(), c.Param("orderNumber"), req.Actor)
		return opErr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// Refund handles the POST /orders/:orderNumber/refund endpoint
func (h *OrderHandler) Refund(c *gin.Context) {
	var req dto.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	amountCents, err := entity.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	var order *entity.Order
	err = withConflictRetry(c, h.logger, func() error {
		var opErr error
		order, opErr = h.engine.Refund(c.Request.Context(), c.Param("orderNumber"), amountCents, req.Actor)
		return opErr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// Deliver handles the POST /orders/:orderNumber/delivery endpoint
func (h *OrderHandler) Deliver(c *gin.Context) {
	var req dto.DeliverOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	var order *entity.Order
	err := withConflictRetry(c, h.logger, func() error {
		var opErr error
		order, opErr = h.engine.MarkDelivered(c.Request.Context(), c.Param("orderNumber"), req.FileRefs, req.Notes, req.Actor)
		return opErr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// Timeline handles the GET /orders/:orderNumber/timeline endpoint
func (h *OrderHandler) Timeline(c *gin.Context) {
	events, err := h.engine.Timeline(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.OrderEventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, dto.OrderEventResponse{
			Cause:     event.Cause,
			Actor:     event.Actor,
			Detail:    event.Detail,
			CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, resp)
}
