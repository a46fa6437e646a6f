package entity

import (
	"fmt"
	"time"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
)

// OrderStatus defines the fulfillment status of an order
type OrderStatus string

// Order fulfillment statuses. cancelled, completed and refunded are terminal.
const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusPendingDelivery OrderStatus = "pending_delivery"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefunded        OrderStatus = "refunded"
)

// PaymentStatus tracks whether the order's debit settled
type PaymentStatus string

// Order payment statuses
const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DeliveryMode selects the fulfillment path
type DeliveryMode string

// Delivery modes: automatic orders are fulfilled from the access-code pool,
// manual orders wait for an operator file upload.
const (
	DeliveryAutomatic DeliveryMode = "automatic"
	DeliveryManual    DeliveryMode = "manual"
)

// Order represents one purchase intent and its fulfillment lifecycle
type Order struct {
	ID             uint64
	OrderNumber    string
	OwnerID        uint64
	ProductID      uint64
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64
	DiscountCents  int64
	NetCents       int64
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	DeliveryMode   DeliveryMode
	RefundedCents  int64
	DeliveryFiles  []string
	DeliveryNotes  string
	CreatedAt      time.Time
	PaidAt         *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// NewOrder creates a pending order with derived totals
func NewOrder(
	orderNumber string,
	ownerID uint64,
	productID uint64,
	quantity int,
	unitPriceCents int64,
	discountCents int64,
	deliveryMode DeliveryMode,
	timeProvider coreport.TimeProvider,
) (*Order, error) {
	if orderNumber == "" {
		return nil, fmt.Errorf("%w: order number cannot be empty", errs.ErrValidation)
	}
	if ownerID == 0 || productID == 0 {
		return nil, fmt.Errorf("%w: owner and product ids must be positive", errs.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	if unitPriceCents < 0 || discountCents < 0 {
		return nil, fmt.Errorf("%w: price and discount cannot be negative", errs.ErrValidation)
	}
	if deliveryMode != DeliveryAutomatic && deliveryMode != DeliveryManual {
		return nil, fmt.Errorf("%w: unknown delivery mode %q", errs.ErrValidation, deliveryMode)
	}

	total := unitPriceCents * int64(quantity)
	if discountCents > total {
		return nil, fmt.Errorf("%w: discount exceeds order total", errs.ErrValidation)
	}

	return &Order{
		OrderNumber:    orderNumber,
		OwnerID:        ownerID,
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		TotalCents:     total,
		DiscountCents:  discountCents,
		NetCents:       total - discountCents,
		Status:         OrderStatusPending,
		PaymentStatus:  PaymentStatusPending,
		DeliveryMode:   deliveryMode,
		CreatedAt:      timeProvider.Now(),
	}, nil
}

// CanBeCancelled holds only while the order is pending and unpaid
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus != PaymentStatusPaid
}

// BeginProcessing transitions pending -> processing
func (o *Order) BeginProcessing() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: order %s is %s, expected pending", errs.ErrValidation, o.OrderNumber, o.Status)
	}
	o.Status = OrderStatusProcessing
	return nil
}

// MarkPaid records the settled purchase debit
func (o *Order) MarkPaid(timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	o.PaidAt = &now
	o.PaymentStatus = PaymentStatusPaid
}

// RevertToPendingPayment returns a processing order to pending after a
// failed debit
func (o *Order) RevertToPendingPayment() {
	o.Status = OrderStatusPending
	o.PaymentStatus = PaymentStatusFailed
}

// AwaitManualDelivery transitions processing -> pending_delivery
func (o *Order) AwaitManualDelivery() error {
	if o.Status != OrderStatusProcessing {
		return fmt.Errorf("%w: order %s is %s, expected processing", errs.ErrValidation, o.OrderNumber, o.Status)
	}
	o.Status = OrderStatusPendingDelivery
	return nil
}

// Complete finalizes the order. Automatic orders must hold exactly Quantity
// finalized codes; manual orders at least one delivery file.
func (o *Order) Complete(finalizedCodes int, timeProvider coreport.TimeProvider) error {
	if o.Status != OrderStatusProcessing && o.Status != OrderStatusPendingDelivery {
		return fmt.Errorf("%w: order %s is %s, cannot complete", errs.ErrValidation, o.OrderNumber, o.Status)
	}
	if o.PaymentStatus != PaymentStatusPaid {
		return fmt.Errorf("%w: order %s is not paid", errs.ErrValidation, o.OrderNumber)
	}

	switch o.DeliveryMode {
	case DeliveryAutomatic:
		if finalizedCodes != o.Quantity {
			return fmt.Errorf("%w: order %s holds %d codes, expected %d",
				errs.ErrValidation, o.OrderNumber, finalizedCodes, o.Quantity)
		}
	case DeliveryManual:
		if len(o.DeliveryFiles) == 0 {
			return fmt.Errorf("%w: order %s has no delivery files", errs.ErrValidation, o.OrderNumber)
		}
	}

	now := timeProvider.Now()
	o.CompletedAt = &now
	o.Status = OrderStatusCompleted
	return nil
}

// Cancel transitions to cancelled while the cancellation guard holds
func (o *Order) Cancel(timeProvider coreport.TimeProvider) error {
	if !o.CanBeCancelled() {
		return fmt.Errorf("%w: order %s (status %s, payment %s)",
			errs.ErrCannotCancel, o.OrderNumber, o.Status, o.PaymentStatus)
	}
	now := timeProvider.Now()
	o.CancelledAt = &now
	o.Status = OrderStatusCancelled
	return nil
}

// RemainingRefundableCents is the amount still refundable on the order
func (o *Order) RemainingRefundableCents() int64 {
	return o.NetCents - o.RefundedCents
}

// ApplyRefund records a full or partial refund. The cumulative refunded
// amount can never exceed NetCents; sold codes stay with the customer.
func (o *Order) ApplyRefund(amountCents int64) error {
	if o.Status != OrderStatusCompleted && o.Status != OrderStatusRefunded {
		return fmt.Errorf("%w: order %s is %s, only completed orders are refundable",
			errs.ErrValidation, o.OrderNumber, o.Status)
	}
	if amountCents <= 0 {
		return fmt.Errorf("%w: refund amount must be positive", errs.ErrValidation)
	}
	if remaining := o.RemainingRefundableCents(); amountCents > remaining {
		return errs.NewRefundBoundError(o.OrderNumber, amountCents, remaining)
	}

	o.RefundedCents += amountCents
	if o.RefundedCents == o.NetCents {
		o.PaymentStatus = PaymentStatusRefunded
		o.Status = OrderStatusRefunded
	}
	return nil
}

// AttachDelivery records the manual delivery upload on the order
func (o *Order) AttachDelivery(fileRefs []string, notes string) error {
	if o.DeliveryMode != DeliveryManual {
		return fmt.Errorf("%w: order %s is not a manual-delivery order", errs.ErrValidation, o.OrderNumber)
	}
	if len(fileRefs) == 0 {
		return fmt.Errorf("%w: at least one delivery file reference is required", errs.ErrValidation)
	}
	o.DeliveryFiles = append(o.DeliveryFiles, fileRefs...)
	o.DeliveryNotes = notes
	return nil
}
