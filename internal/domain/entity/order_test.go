package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	"github.com/kiarash-asgari/storefront-core/mocks/port/core"
)

func newTestOrder(t *testing.T, quantity int, unitPriceCents, discountCents int64, mode DeliveryMode) *Order {
	t.Helper()
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTimeProvider := new(core.MockTimeProvider)
	mockTimeProvider.On("Now").Return(fixedTime)

	order, err := NewOrder("ord-1", 42, 7, quantity, unitPriceCents, discountCents, mode, mockTimeProvider)
	assert.NoError(t, err)
	return order
}

func TestNewOrder(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should derive totals from quantity, price and discount", func(t *testing.T) {
		// Arrange
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)

		// Act
		order, err := NewOrder("ord-1", 42, 7, 3, 1000, 500, DeliveryAutomatic, mockTimeProvider)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, int64(3000), order.TotalCents)
		assert.Equal(t, int64(2500), order.NetCents)
		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Equal(t, PaymentStatusPending, order.PaymentStatus)
		assert.Equal(t, fixedTime, order.CreatedAt)
	})

	t.Run("should reject invalid inputs", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)

		_, err := NewOrder("", 42, 7, 1, 1000, 0, DeliveryAutomatic, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = NewOrder("ord-1", 0, 7, 1, 1000, 0, DeliveryAutomatic, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = NewOrder("ord-1", 42, 7, 0, 1000, 0, DeliveryAutomatic, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = NewOrder("ord-1", 42, 7, 1, -1000, 0, DeliveryAutomatic, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = NewOrder("ord-1", 42, 7, 1, 1000, 0, DeliveryMode("carrier-pigeon"), mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("should reject a discount exceeding the total", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)

		_, err := NewOrder("ord-1", 42, 7, 2, 1000, 2001, DeliveryAutomatic, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should complete an automatic order with exactly quantity codes", func(t *testing.T) {
		// Arrange
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 2, 1000, 0, DeliveryAutomatic)

		// Act
		assert.NoError(t, order.BeginProcessing())
		order.MarkPaid(mockTimeProvider)
		err := order.Complete(2, mockTimeProvider)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, OrderStatusCompleted, order.Status)
		assert.NotNil(t, order.CompletedAt)
	})

	t.Run("should reject completion on a code count mismatch", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 2, 1000, 0, DeliveryAutomatic)

		assert.NoError(t, order.BeginProcessing())
		order.MarkPaid(mockTimeProvider)

		err := order.Complete(1, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, OrderStatusProcessing, order.Status)
	})

	t.Run("should reject completion of an unpaid order", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)
		order := newTestOrder(t, 1, 1000, 0, DeliveryAutomatic)

		assert.NoError(t, order.BeginProcessing())

		err := order.Complete(1, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("should require delivery files on a manual order", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 1, 1000, 0, DeliveryManual)

		assert.NoError(t, order.BeginProcessing())
		order.MarkPaid(mockTimeProvider)
		assert.NoError(t, order.AwaitManualDelivery())

		// No files yet
		err := order.Complete(0, mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrValidation)

		assert.NoError(t, order.AttachDelivery([]string{"s3://bucket/key.zip"}, "handed over"))
		assert.NoError(t, order.Complete(0, mockTimeProvider))
		assert.Equal(t, OrderStatusCompleted, order.Status)
	})

	t.Run("should revert to pending payment after a failed debit", func(t *testing.T) {
		order := newTestOrder(t, 1, 1000, 0, DeliveryAutomatic)

		assert.NoError(t, order.BeginProcessing())
		order.RevertToPendingPayment()

		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Equal(t, PaymentStatusFailed, order.PaymentStatus)
	})
}

func TestOrder_Cancel(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should cancel a pending unpaid order", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 1, 1000, 0, DeliveryAutomatic)

		err := order.Cancel(mockTimeProvider)

		assert.NoError(t, err)
		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.NotNil(t, order.CancelledAt)
	})

	t.Run("should refuse to cancel once paid", func(t *testing.T) {
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 1, 1000, 0, DeliveryAutomatic)

		order.MarkPaid(mockTimeProvider)

		err := order.Cancel(mockTimeProvider)
		assert.ErrorIs(t, err, errs.ErrCannotCancel)
		assert.Equal(t, OrderStatusPending, order.Status)
	})
}

func TestOrder_ApplyRefund(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	completedOrder := func(t *testing.T) *Order {
		mockTimeProvider := new(core.MockTimeProvider)
		mockTimeProvider.On("Now").Return(fixedTime)
		order := newTestOrder(t, 2, 1000, 0, DeliveryAutomatic)
		assert.NoError(t, order.BeginProcessing())
		order.MarkPaid(mockTimeProvider)
		assert.NoError(t, order.Complete(2, mockTimeProvider))
		return order
	}

	t.Run("should accumulate partial refunds up to the order net", func(t *testing.T) {
		order := completedOrder(t)

		assert.NoError(t, order.ApplyRefund(500))
		assert.Equal(t, int64(500), order.RefundedCents)
		assert.Equal(t, OrderStatusCompleted, order.Status)
		assert.Equal(t, int64(1500), order.RemainingRefundableCents())

		// Exhausting the remainder flips the order to refunded
		assert.NoError(t, order.ApplyRefund(1500))
		assert.Equal(t, OrderStatusRefunded, order.Status)
		assert.Equal(t, PaymentStatusRefunded, order.PaymentStatus)
	})

	t.Run("should reject a refund exceeding the remaining amount", func(t *testing.T) {
		order := completedOrder(t)
		assert.NoError(t, order.ApplyRefund(1500))

		err := order.ApplyRefund(501)

		assert.ErrorIs(t, err, errs.ErrValidation)
		var boundErr *errs.RefundBoundError
		assert.ErrorAs(t, err, &boundErr)
		assert.Equal(t, int64(500), boundErr.RefundableCents)
		assert.Equal(t, int64(1500), order.RefundedCents)
	})

	t.Run("should reject refunds on non-completed orders", func(t *testing.T) {
		order := newTestOrder(t, 1, 1000, 0, DeliveryAutomatic)

		assert.ErrorIs(t, order.ApplyRefund(100), errs.ErrValidation)
	})

	t.Run("should reject non-positive refund amounts", func(t *testing.T) {
		order := completedOrder(t)

		assert.ErrorIs(t, order.ApplyRefund(0), errs.ErrValidation)
		assert.ErrorIs(t, order.ApplyRefund(-100), errs.ErrValidation)
	})
}
