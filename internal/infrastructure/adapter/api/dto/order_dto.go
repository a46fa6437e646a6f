package dto

// CreateOrderRequest represents the API request for registering an order
type CreateOrderRequest struct {
	OwnerID      uint64 `json:"ownerId" binding:"required"`
	ProductID    uint64 `json:"productId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	UnitPrice    string `json:"unitPrice" binding:"required"`
	Discount     string `json:"discount"`
	DeliveryMode string `json:"deliveryMode" binding:"required,oneof=automatic manual"`
	Actor        string `json:"actor" binding:"required"`
}

// ProcessOrderRequest represents the API request for processing an order
type ProcessOrderRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// CancelOrderRequest represents the API request for cancelling an order
type CancelOrderRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// RefundOrderRequest represents the API request for refunding an order
type RefundOrderRequest struct {
	Amount string `json:"amount" binding:"required"`
	Actor  string `json:"actor" binding:"required"`
}

// DeliverOrderRequest represents the manual delivery upload
type DeliverOrderRequest struct {
	FileRefs []string `json:"fileRefs" binding:"required,min=1"`
	Notes    string   `json:"notes"`
	Actor    string   `json:"actor" binding:"required"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	OrderNumber   string   `json:"orderNumber"`
	OwnerID       uint64   `json:"ownerId"`
	ProductID     uint64   `json:"productId"`
	Quantity      int      `json:"quantity"`
	UnitPrice     string   `json:"unitPrice"`
	Total         string   `json:"total"`
	Discount      string   `json:"discount"`
	Net           string   `json:"net"`
	Status        string   `json:"status"`
	PaymentStatus string   `json:"paymentStatus"`
	DeliveryMode  string   `json:"deliveryMode"`
	Refunded      string   `json:"refunded"`
	DeliveryFiles []string `json:"deliveryFiles,omitempty"`
	DeliveryNotes string   `json:"deliveryNotes,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

// OrderEventResponse represents one timeline entry in API responses
type OrderEventResponse struct {
	Cause     string `json:"cause"`
	Actor     string `json:"actor"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"createdAt"`
}
