package entity

import (
	"time"

	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
)

// OrderEvent is one entry in an order's audit timeline. Every state
// transition of the fulfillment engine appends one.
type OrderEvent struct {
	ID        uint64
	OrderID   uint64
	Cause     string // transition name, e.g. "processing_started", "cancelled"
	Actor     string // explicit actor, never ambient session state
	Detail    string
	CreatedAt time.Time
}

// NewOrderEvent creates a timeline entry for an order transition
func NewOrderEvent(orderID uint64, cause, actor, detail string, timeProvider coreport.TimeProvider) *OrderEvent {
	return &OrderEvent{
		OrderID:   orderID,
		Cause:     cause,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: timeProvider.Now(),
	}
}
