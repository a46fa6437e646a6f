package dto

// CreateInvoiceRequest represents the API request for a funding invoice
type CreateInvoiceRequest struct {
	OwnerID     uint64 `json:"ownerId" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	PayCurrency string `json:"payCurrency"`
}

// CreateInvoiceResponse represents the API response for a minted invoice
type CreateInvoiceResponse struct {
	TransactionID string `json:"transactionId"`
	OrderRef      string `json:"orderRef"`
	PaymentID     string `json:"paymentId"`
	InvoiceURL    string `json:"invoiceUrl"`
}

// WebhookPayload represents the gateway callback body. Field names follow
// the gateway's wire format.
type WebhookPayload struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	PayAmount     string `json:"pay_amount"`
	PayCurrency   string `json:"pay_currency"`
	ActuallyPaid  string `json:"actually_paid"`
}

// WebhookResponse acknowledges a processed callback
type WebhookResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Noop          bool   `json:"noop,omitempty"`
}

// PaymentStatusResponse represents the reconciled status snapshot
type PaymentStatusResponse struct {
	PaymentID    string `json:"paymentId"`
	OrderRef     string `json:"orderRef"`
	Status       string `json:"status"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	PayCurrency  string `json:"payCurrency,omitempty"`
	PayAmount    string `json:"payAmount,omitempty"`
	ActuallyPaid string `json:"actuallyPaid,omitempty"`
	CreatedAt    string `json:"createdAt"`
	CompletedAt  string `json:"completedAt,omitempty"`
}
