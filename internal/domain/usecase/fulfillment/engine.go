package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/inventory"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/referral"
)

// Timeline causes the engine emits
const (
	EventCreated            = "created"
	EventProcessingStarted  = "processing_started"
	EventPaymentFailed      = "payment_failed"
	EventPaid               = "paid"
	EventInventoryExhausted = "inventory_exhausted"
	EventAwaitingDelivery   = "awaiting_delivery"
	EventDelivered          = "delivered"
	EventCompleted          = "completed"
	EventCancelled          = "cancelled"
	EventRefunded           = "refunded"
)

// Engine drives the order state machine: it consumes the ledger for the
// purchase debit and the allocator for credential fulfillment, and fires
// referral accrual on completion. Actors are always explicit; there is no
// ambient session state in the core.
type Engine struct {
	uow          persistence.UnitOfWork
	orderRepo    persistence.OrderRepository
	txnRepo      persistence.TransactionRepository
	ledger       *ledger.Ledger
	allocator    *inventory.Allocator
	accrual      *referral.Accrual
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewEngine creates a fulfillment engine
func NewEngine(
	uow persistence.UnitOfWork,
	orderRepo persistence.OrderRepository,
	txnRepo persistence.TransactionRepository,
	ldgr *ledger.Ledger,
	allocator *inventory.Allocator,
	accrual *referral.Accrual,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Engine {
	return &Engine{
		uow:          uow,
		orderRepo:    orderRepo,
		txnRepo:      txnRepo,
		ledger:       ldgr,
		allocator:    allocator,
		accrual:      accrual,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateOrder registers a purchase intent in pending status. Nothing is
// debited yet.
func (e *Engine) CreateOrder(
	ctx context.Context,
	ownerID, productID uint64,
	quantity int,
	unitPriceCents, discountCents int64,
	deliveryMode entity.DeliveryMode,
	actor string,
) (*entity.Order, error) {
	order, err := entity.NewOrder(uuid.NewString(), ownerID, productID, quantity, unitPriceCents, discountCents, deliveryMode, e.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := e.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	e.appendEvent(ctx, order, EventCreated, actor, "")

	e.logger.Info("Order created", map[string]any{
		"order_number":  order.OrderNumber,
		"owner_id":      ownerID,
		"product_id":    productID,
		"quantity":      quantity,
		"net_cents":     order.NetCents,
		"delivery_mode": deliveryMode,
	})
	return order, nil
}

// Process moves a pending order through payment and fulfillment. The ledger
// debit is synchronous: insufficient funds fail the debit transaction, put
// the order back to pending with a failed payment status, and surface the
// error. Automatic orders then reserve and finalize access codes; a
// reservation shortfall leaves the order in processing for the operator, it
// is never retried silently.
func (e *Engine) Process(ctx context.Context, orderNumber, actor string) (*entity.Order, error) {
	order, err := e.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if err := order.BeginProcessing(); err != nil {
		return nil, err
	}
	if err := e.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	e.appendEvent(ctx, order, EventProcessingStarted, actor, "")

	if err := e.debitPurchase(ctx, order, actor); err != nil {
		return order, err
	}

	if order.DeliveryMode == entity.DeliveryManual {
		if err := order.AwaitManualDelivery(); err != nil {
			return nil, err
		}
		if err := e.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		e.appendEvent(ctx, order, EventAwaitingDelivery, actor, "")
		return order, nil
	}

	return e.fulfillAutomatic(ctx, order, actor)
}

// MarkDelivered completes a manual-delivery order once the operator has
// uploaded at least one file. The engine only records the references; file
// contents are a collaborator's concern.
func (e *Engine) MarkDelivered(ctx context.Context, orderNumber string, fileRefs []string, notes, actor string) (*entity.Order, error) {
	order, err := e.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.Status != entity.OrderStatusPendingDelivery {
		return nil, fmt.Errorf("%w: order %s is %s, expected pending_delivery",
			errs.ErrValidation, order.OrderNumber, order.Status)
	}
	if err := order.AttachDelivery(fileRefs, notes); err != nil {
		return nil, err
	}
	if err := order.Complete(0, e.timeProvider); err != nil {
		return nil, err
	}
	if err := e.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	e.appendEvent(ctx, order, EventDelivered, actor, fmt.Sprintf("%d files", len(fileRefs)))
	e.appendEvent(ctx, order, EventCompleted, actor, "")

	e.fireAccrual(ctx, order)

	e.logger.Info("Manual delivery completed", map[string]any{
		"order_number": order.OrderNumber,
		"files":        len(fileRefs),
	})
	return order, nil
}

// Cancel cancels an order while the guard holds. The inventory release and
// the order cancellation commit atomically; a purchase debit that never
// completed is cancelled with them.
func (e *Engine) Cancel(ctx context.Context, orderNumber, actor string) (*entity.Order, error) {
	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	orderRepo := e.uow.GetOrderRepository(txCtx)
	codeRepo := e.uow.GetAccessCodeRepository(txCtx)
	txnRepo := e.uow.GetTransactionRepository(txCtx)

	order, err := orderRepo.GetByOrderNumber(txCtx, orderNumber)
	if err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}

	if err := order.Cancel(e.timeProvider); err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}

	released, err := codeRepo.ReleaseForOrder(txCtx, order.ID)
	if err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}

	if err := e.cancelPendingPurchase(txCtx, txnRepo, order); err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}

	if err := orderRepo.Update(txCtx, order); err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}
	if err := orderRepo.AppendEvent(txCtx, entity.NewOrderEvent(order.ID, EventCancelled, actor,
		fmt.Sprintf("%d codes released", released), e.timeProvider)); err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}

	if err := e.uow.Commit(txCtx); err != nil {
		return nil, err
	}

	e.logger.Info("Order cancelled", map[string]any{
		"order_number":   order.OrderNumber,
		"actor":          actor,
		"codes_released": released,
	})
	return order, nil
}

// Refund creates a compensating refund transaction against a completed
// order. Partial refunds accumulate; the total can never exceed the order
// net. Sold codes are not reclaimed.
func (e *Engine) Refund(ctx context.Context, orderNumber string, amountCents int64, actor string) (*entity.Order, error) {
	order, err := e.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	// Validate against the order's bookkeeping before touching the ledger
	// so an over-refund persists nothing.
	if err := order.ApplyRefund(amountCents); err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"order_number": order.OrderNumber,
		"actor":        actor,
	}
	txn, err := e.ledger.RecordPending(ctx, uuid.NewString(), order.OwnerID, entity.KindRefund, amountCents, 0, order.OrderNumber, metadata)
	if err != nil {
		return nil, err
	}
	if _, err := e.ledger.Complete(ctx, txn.TransactionID); err != nil {
		return nil, err
	}

	if err := e.orderRepo.Update(ctx, order); err != nil {
		// The credit is already on the ledger; the discrepancy goes to
		// reconciliation instead of reversing a completed transaction.
		e.logger.Error("Refund credited but order bookkeeping failed", map[string]any{
			"order_number":   order.OrderNumber,
			"transaction_id": txn.TransactionID,
			"error":          err.Error(),
		})
		return nil, err
	}
	e.appendEvent(ctx, order, EventRefunded, actor, entity.FormatCents(amountCents))

	e.logger.Info("Order refunded", map[string]any{
		"order_number":   order.OrderNumber,
		"refund_cents":   amountCents,
		"refunded_total": order.RefundedCents,
		"payment_status": order.PaymentStatus,
	})
	return order, nil
}

// Timeline returns an order's audit trail, oldest first
func (e *Engine) Timeline(ctx context.Context, orderNumber string) ([]*entity.OrderEvent, error) {
	order, err := e.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return e.orderRepo.ListEvents(ctx, order.ID)
}

// debitPurchase records and completes the synchronous purchase debit
func (e *Engine) debitPurchase(ctx context.Context, order *entity.Order, actor string) error {
	metadata := map[string]string{"order_number": order.OrderNumber}
	txn, err := e.ledger.RecordPending(ctx, uuid.NewString(), order.OwnerID, entity.KindPurchase, -order.NetCents, 0, order.OrderNumber, metadata)
	if err != nil {
		return err
	}

	if _, err := e.ledger.Complete(ctx, txn.TransactionID); err != nil {
		if errs.IsInsufficientFundsError(err) {
			order.RevertToPendingPayment()
			if updateErr := e.orderRepo.Update(ctx, order); updateErr != nil {
				return updateErr
			}
			e.appendEvent(ctx, order, EventPaymentFailed, actor, "insufficient funds")
		}
		return err
	}

	order.MarkPaid(e.timeProvider)
	if err := e.orderRepo.Update(ctx, order); err != nil {
		return err
	}
	e.appendEvent(ctx, order, EventPaid, actor, entity.FormatCents(order.NetCents))
	return nil
}

// fulfillAutomatic reserves and finalizes access codes for a paid order
func (e *Engine) fulfillAutomatic(ctx context.Context, order *entity.Order, actor string) (*entity.Order, error) {
	codeIDs, err := e.allocator.Reserve(ctx, order.ProductID, order.ID, order.Quantity)
	if err != nil {
		if errs.IsInventoryExhaustedError(err) {
			// The order stays in processing; the shortfall is surfaced to
			// the operator, who restocks or switches to manual delivery.
			e.appendEvent(ctx, order, EventInventoryExhausted, actor, err.Error())
		}
		return order, err
	}

	if err := e.allocator.Finalize(ctx, order.ID, codeIDs); err != nil {
		return nil, err
	}

	if err := order.Complete(len(codeIDs), e.timeProvider); err != nil {
		return nil, err
	}
	if err := e.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	e.appendEvent(ctx, order, EventCompleted, actor, fmt.Sprintf("%d codes delivered", len(codeIDs)))

	e.fireAccrual(ctx, order)

	e.logger.Info("Order completed", map[string]any{
		"order_number": order.OrderNumber,
		"codes":        len(codeIDs),
	})
	return order, nil
}

// cancelPendingPurchase cancels the order's never-completed purchase debit
func (e *Engine) cancelPendingPurchase(ctx context.Context, txnRepo persistence.TransactionRepository, order *entity.Order) error {
	txns, err := txnRepo.ListByOrderRef(ctx, order.OrderNumber)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if txn.Kind == entity.KindPurchase && txn.IsPending() {
			if err := txn.MarkCancelled(e.timeProvider, "order cancelled"); err != nil {
				return err
			}
			if err := txnRepo.Update(ctx, txn); err != nil {
				return err
			}
		}
	}
	return nil
}

// fireAccrual posts referral commission after completion. A failure here
// never rolls back the completed order; it is logged as a reconciliation
// discrepancy.
func (e *Engine) fireAccrual(ctx context.Context, order *entity.Order) {
	if err := e.accrual.AccrueForOrder(ctx, order); err != nil {
		e.logger.Error("Referral accrual failed, recorded as reconciliation discrepancy", map[string]any{
			"order_number": order.OrderNumber,
			"error":        err.Error(),
		})
	}
}

func (e *Engine) appendEvent(ctx context.Context, order *entity.Order, cause, actor, detail string) {
	event := entity.NewOrderEvent(order.ID, cause, actor, detail, e.timeProvider)
	if err := e.orderRepo.AppendEvent(ctx, event); err != nil {
		e.logger.Error("Failed to append order timeline event", map[string]any{
			"order_number": order.OrderNumber,
			"cause":        cause,
			"error":        err.Error(),
		})
	}
}
