package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	gwport "github.com/kiarash-asgari/storefront-core/internal/domain/port/gateway"
)

// Config holds the payment gateway client settings
type Config struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPPaymentGateway is the HTTP client for the external payment processor.
// Authentication is an x-api-key header; amounts cross the wire as decimal
// strings in the settlement currency.
type HTTPPaymentGateway struct {
	config     Config
	httpClient *http.Client
	logger     coreport.Logger
}

// NewHTTPPaymentGateway creates a new HTTPPaymentGateway instance
func NewHTTPPaymentGateway(config Config, logger coreport.Logger) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Name identifies the gateway in transaction records
func (g *HTTPPaymentGateway) Name() string {
	return g.config.Name
}

type invoiceRequestBody struct {
	PriceAmount   string `json:"price_amount"`
	PriceCurrency string `json:"price_currency"`
	PayCurrency   string `json:"pay_currency,omitempty"`
	OrderID       string `json:"order_id"`
	OrderDesc     string `json:"order_description,omitempty"`
}

type invoiceResponseBody struct {
	PaymentID   string `json:"payment_id"`
	InvoiceURL  string `json:"invoice_url"`
	PayCurrency string `json:"pay_currency"`
	Message     string `json:"message,omitempty"`
}

// CreateInvoice mints a payable invoice for a pending deposit
func (g *HTTPPaymentGateway) CreateInvoice(ctx context.Context, req gwport.InvoiceRequest) (*gwport.InvoiceResponse, error) {
	body := invoiceRequestBody{
		PriceAmount:   entity.FormatCents(req.AmountCents),
		PriceCurrency: "usd",
		PayCurrency:   req.PayCurrency,
		OrderID:       req.OrderRef,
		OrderDesc:     fmt.Sprintf("balance top-up for account %d", req.PayerID),
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errs.NewGatewayError(g.Name(), "create_invoice", err)
	}

	url := g.config.BaseURL + "/v1/invoice"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, errs.NewGatewayError(g.Name(), "create_invoice", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.config.APIKey)

	g.logger.Debug("Creating gateway invoice", map[string]any{
		"gateway":   g.Name(),
		"order_ref": req.OrderRef,
		"amount":    body.PriceAmount,
	})

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Error("Gateway request failed", map[string]any{
			"gateway":   g.Name(),
			"order_ref": req.OrderRef,
			"error":     err.Error(),
		})
		return nil, errs.NewGatewayError(g.Name(), "create_invoice", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.Error("Gateway rejected invoice", map[string]any{
			"gateway":     g.Name(),
			"order_ref":   req.OrderRef,
			"status_code": resp.StatusCode,
			"body":        string(detail),
		})
		return nil, errs.NewGatewayError(g.Name(), "create_invoice",
			fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(detail)))
	}

	var invoice invoiceResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, errs.NewGatewayError(g.Name(), "create_invoice",
			fmt.Errorf("failed to decode response: %w", err))
	}

	if invoice.PaymentID == "" || invoice.InvoiceURL == "" {
		return nil, errs.NewGatewayError(g.Name(), "create_invoice",
			fmt.Errorf("incomplete invoice response: %s", invoice.Message))
	}

	g.logger.Info("Gateway invoice created", map[string]any{
		"gateway":    g.Name(),
		"order_ref":  req.OrderRef,
		"payment_id": invoice.PaymentID,
	})

	return &gwport.InvoiceResponse{
		PaymentID:   invoice.PaymentID,
		InvoiceURL:  invoice.InvoiceURL,
		PayCurrency: invoice.PayCurrency,
	}, nil
}

var _ gwport.PaymentGateway = (*HTTPPaymentGateway)(nil)
