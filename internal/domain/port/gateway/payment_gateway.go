package gateway

import (
	"context"
)

// InvoiceRequest carries what the gateway needs to mint a payable invoice
type InvoiceRequest struct {
	OrderRef    string // correlation key echoed back in webhook callbacks
	AmountCents int64  // settlement currency (USD) amount
	PayCurrency string // crypto currency the payer wants to pay in
	PayerID     uint64
}

// InvoiceResponse is the gateway's answer to a successful invoice creation
type InvoiceResponse struct {
	PaymentID   string // gateway-assigned id, persisted onto the transaction
	InvoiceURL  string // checkout URL handed to the customer
	PayCurrency string
}

// PaymentGateway is the outbound port to the external payment gateway. The
// call is the only I/O-bound step in the core and runs under the caller's
// context deadline; a timeout is a GatewayError, not a definite failure of
// the invoice.
type PaymentGateway interface {
	// Name identifies the gateway in transaction records
	Name() string

	// CreateInvoice mints a payable invoice for a pending deposit
	//
	// Possible errors:
	// - ErrGatewayUnavailable: call failed or timed out
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error)
}
