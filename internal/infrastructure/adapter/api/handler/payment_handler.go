package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	domainerr "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/reconcile"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the webhook HMAC over the raw body
const SignatureHeader = "X-Gateway-Signature"

// PaymentHandler handles funding and reconciliation HTTP requests
type PaymentHandler struct {
	reconciler *reconcile.Reconciler
	logger     coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(reconciler *reconcile.Reconciler, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// CreateInvoice handles the POST /payments/invoice endpoint
func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
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

	handle, err := h.reconciler.CreateInvoice(c.Request.Context(), req.OwnerID, amountCents, req.PayCurrency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateInvoiceResponse{
		TransactionID: handle.TransactionID,
		OrderRef:      handle.OrderRef,
		PaymentID:     handle.PaymentID,
		InvoiceURL:    handle.InvoiceURL,
	})
}

// Webhook handles the POST /payments/webhook endpoint. The signature is
// verified over the raw body before anything is parsed; the gateway retries
// on any non-2xx status.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Could not read request body",
		})
		return
	}

	if err := h.reconciler.VerifySignature(rawBody, c.GetHeader(SignatureHeader)); err != nil {
		h.logger.Warn("Webhook signature rejected", map[string]any{
			"client_ip": c.ClientIP(),
		})
		respondError(c, err)
		return
	}

	var payload dto.WebhookPayload
	if err := parseJSON(rawBody, &payload); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid webhook body: " + err.Error(),
		})
		return
	}

	var result *reconcile.CallbackResult
	err = withConflictRetry(c, h.logger, func() error {
		var opErr error
		result, opErr = h.reconciler.ApplyCallback(c.Request.Context(), reconcile.CallbackPayload{
			PaymentID:     payload.PaymentID,
			OrderRef:      payload.OrderID,
			PaymentStatus: payload.PaymentStatus,
			PayAmount:     payload.PayAmount,
			PayCurrency:   payload.PayCurrency,
			ActuallyPaid:  payload.ActuallyPaid,
		})
		return opErr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		TransactionID: result.TransactionID,
		Status:        string(result.Status),
		Noop:          result.Noop,
	})
}

// GetStatus handles the GET /payments/:paymentId/status endpoint
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	paymentID := c.Param("paymentId")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Missing payment id",
		})
		return
	}

	snapshot, err := h.reconciler.GetStatus(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.PaymentStatusResponse{
		PaymentID:    snapshot.PaymentID,
		OrderRef:     snapshot.OrderRef,
		Status:       string(snapshot.Status),
		Amount:       entity.FormatCents(snapshot.AmountCents),
		Currency:     snapshot.Currency,
		PayCurrency:  snapshot.PayCurrency,
		PayAmount:    snapshot.PayAmount,
		ActuallyPaid: snapshot.ActuallyPaid,
		CreatedAt:    snapshot.CreatedAt.UTC().Format(time.RFC3339),
	}
	if snapshot.CompletedAt != nil {
		resp.CompletedAt = snapshot.CompletedAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
