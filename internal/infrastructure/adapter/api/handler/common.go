package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	domainerr "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/dto"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/database"
	"github.com/gin-gonic/gin"
)

// withConflictRetry re-runs a ledger or fulfillment mutation whose unit of
// work aborted on a serialization conflict. Each attempt re-reads state, so
// a retry after an aborted transaction observes the winner's writes. A
// conflict that outlives the bounded retry still reaches the caller as 409.
func withConflictRetry(c *gin.Context, logger coreport.Logger, op func() error) error {
	return database.RetryOnTransientError(c.Request.Context(), database.ConflictRetryConfig(), op, logger)
}

// httpStatusFor maps domain errors to HTTP status codes
func httpStatusFor(err error) int {
	switch {
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case domainerr.IsValidationError(err),
		domainerr.IsInsufficientFundsError(err),
		domainerr.IsInventoryExhaustedError(err):
		return http.StatusBadRequest
	case domainerr.IsConflictError(err),
		domainerr.IsAlreadyTerminalError(err):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrCannotCancel):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrSignatureVerification):
		return http.StatusBadRequest
	case domainerr.IsGatewayError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standardized error body for a domain error
func respondError(c *gin.Context, err error) {
	c.JSON(httpStatusFor(err), dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: err.Error(),
	})
}

// orderToResponse converts an order entity to its API representation
func orderToResponse(order *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		OrderNumber:   order.OrderNumber,
		OwnerID:       order.OwnerID,
		ProductID:     order.ProductID,
		Quantity:      order.Quantity,
		UnitPrice:     entity.FormatCents(order.UnitPriceCents),
		Total:         entity.FormatCents(order.TotalCents),
		Discount:      entity.FormatCents(order.DiscountCents),
		Net:           entity.FormatCents(order.NetCents),
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		DeliveryMode:  string(order.DeliveryMode),
		Refunded:      entity.FormatCents(order.RefundedCents),
		DeliveryFiles: order.DeliveryFiles,
		DeliveryNotes: order.DeliveryNotes,
		CreatedAt:     order.CreatedAt.UTC().Format(time.RFC3339),
	}
	return resp
}

// parseJSON decodes a raw body that was already read for signature checking
func parseJSON(raw []byte, out any) error {
	return json.Unmarshal(raw, out)
}
