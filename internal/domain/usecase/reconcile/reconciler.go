package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	gwport "github.com/kiarash-asgari/storefront-core/internal/domain/port/gateway"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
)

// Gateway payment-status vocabulary as delivered in webhook callbacks
const (
	GatewayStatusWaiting       = "waiting"
	GatewayStatusConfirming    = "confirming"
	GatewayStatusConfirmed     = "confirmed"
	GatewayStatusFinished      = "finished"
	GatewayStatusPartiallyPaid = "partially_paid"
	GatewayStatusFailed        = "failed"
	GatewayStatusExpired       = "expired"
	GatewayStatusRefunded      = "refunded"
)

// Metadata keys the reconciler annotates on deposit transactions
const (
	metaGatewayStatus = "gateway_status"
	metaActuallyPaid  = "actually_paid"
	metaPayAmount     = "pay_amount"
)

// Config carries the deposit and gateway limits the reconciler enforces
type Config struct {
	MinDepositCents int64
	MaxDepositCents int64
	InvoiceTimeout  time.Duration
}

// InvoiceHandle is returned to the caller after a successful invoice mint
type InvoiceHandle struct {
	TransactionID string
	OrderRef      string
	PaymentID     string
	InvoiceURL    string
}

// CallbackPayload is the parsed webhook body
type CallbackPayload struct {
	PaymentID     string
	OrderRef      string
	PaymentStatus string
	PayAmount     string
	PayCurrency   string
	ActuallyPaid  string
}

// CallbackResult reports how a webhook delivery was applied
type CallbackResult struct {
	Applied       bool
	Noop          bool // duplicate or out-of-order delivery against a terminal transaction
	TransactionID string
	Status        entity.TransactionStatus
}

// StatusSnapshot is the read-path view of a reconciled payment. It is
// derived from the same row the reconciler mutates, never a separate cache.
type StatusSnapshot struct {
	PaymentID    string
	OrderRef     string
	Status       entity.TransactionStatus
	AmountCents  int64
	Currency     string
	PayCurrency  string
	PayAmount    string
	ActuallyPaid string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Reconciler verifies and idempotently applies gateway callbacks against the
// ledger, and mints invoices for funding requests. Duplicate, delayed and
// out-of-order deliveries are absorbed by the terminal-status guard: a
// callback against a non-pending transaction is a no-op, never a regression.
type Reconciler struct {
	ledger       *ledger.Ledger
	txnRepo      persistence.TransactionRepository
	gateway      gwport.PaymentGateway
	verifier     *SignatureVerifier
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// New creates a payment reconciler
func New(
	ldgr *ledger.Ledger,
	txnRepo persistence.TransactionRepository,
	gw gwport.PaymentGateway,
	verifier *SignatureVerifier,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Reconciler {
	return &Reconciler{
		ledger:       ldgr,
		txnRepo:      txnRepo,
		gateway:      gw,
		verifier:     verifier,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateInvoice records a pending deposit and asks the gateway to mint a
// payable invoice for it. A gateway failure surfaces as a GatewayError and
// leaves the transaction pending; it is not retried here.
func (r *Reconciler) CreateInvoice(ctx context.Context, ownerID uint64, amountCents int64, payCurrency string) (*InvoiceHandle, error) {
	if amountCents < r.config.MinDepositCents {
		return nil, fmt.Errorf("%w: deposit below minimum of %s", errs.ErrValidation, entity.FormatCents(r.config.MinDepositCents))
	}
	if r.config.MaxDepositCents > 0 && amountCents > r.config.MaxDepositCents {
		return nil, fmt.Errorf("%w: deposit above maximum of %s", errs.ErrValidation, entity.FormatCents(r.config.MaxDepositCents))
	}

	orderRef := uuid.NewString()
	txn, err := r.ledger.RecordPending(ctx, uuid.NewString(), ownerID, entity.KindDeposit, amountCents, 0, orderRef, nil)
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := r.timeProvider.WithTimeout(ctx, r.config.InvoiceTimeout)
	defer cancel()

	invoice, err := r.gateway.CreateInvoice(gwCtx, gwport.InvoiceRequest{
		OrderRef:    orderRef,
		AmountCents: amountCents,
		PayCurrency: payCurrency,
		PayerID:     ownerID,
	})
	if err != nil {
		r.logger.Error("Invoice creation failed, transaction left pending", map[string]any{
			"transaction_id": txn.TransactionID,
			"owner_id":       ownerID,
			"error":          err.Error(),
		})
		return nil, errs.NewGatewayError(r.gateway.Name(), "create invoice", err)
	}

	txn.AttachGateway(r.gateway.Name(), invoice.PaymentID, invoice.InvoiceURL, invoice.PayCurrency)
	if err := r.txnRepo.Update(ctx, txn); err != nil {
		return nil, err
	}

	r.logger.Info("Invoice created", map[string]any{
		"transaction_id": txn.TransactionID,
		"owner_id":       ownerID,
		"payment_id":     invoice.PaymentID,
		"amount_cents":   amountCents,
	})
	return &InvoiceHandle{
		TransactionID: txn.TransactionID,
		OrderRef:      orderRef,
		PaymentID:     invoice.PaymentID,
		InvoiceURL:    invoice.InvoiceURL,
	}, nil
}

// VerifySignature checks the webhook HMAC over the raw body
func (r *Reconciler) VerifySignature(rawPayload []byte, signatureHeader string) error {
	return r.verifier.Verify(rawPayload, signatureHeader)
}

// ApplyCallback is the idempotent core of reconciliation. The transaction is
// located by its correlation key (falling back to the gateway payment id once
// linked); a terminal transaction absorbs the delivery as a no-op.
func (r *Reconciler) ApplyCallback(ctx context.Context, payload CallbackPayload) (*CallbackResult, error) {
	if payload.PaymentStatus == "" {
		return nil, fmt.Errorf("%w: missing payment status", errs.ErrValidation)
	}

	txn, err := r.lookup(ctx, payload)
	if err != nil {
		return nil, err
	}

	if txn.IsTerminal() {
		r.logger.Info("Replayed callback against terminal transaction, no-op", map[string]any{
			"transaction_id": txn.TransactionID,
			"status":         txn.Status,
			"gateway_status": payload.PaymentStatus,
		})
		return &CallbackResult{Applied: true, Noop: true, TransactionID: txn.TransactionID, Status: txn.Status}, nil
	}

	// Link the gateway payment id on first contact so later deliveries and
	// status polls resolve by it.
	if txn.GatewayPaymentID == "" && payload.PaymentID != "" {
		txn.AttachGateway(r.gateway.Name(), payload.PaymentID, txn.InvoiceURL, payload.PayCurrency)
	}

	txn.Annotate(metaGatewayStatus, payload.PaymentStatus)
	if payload.PayAmount != "" {
		txn.Annotate(metaPayAmount, payload.PayAmount)
	}

	switch payload.PaymentStatus {
	case GatewayStatusWaiting, GatewayStatusConfirming:
		if noop, err := r.persist(ctx, txn, payload.PaymentStatus); noop != nil || err != nil {
			return noop, err
		}
		return &CallbackResult{Applied: true, TransactionID: txn.TransactionID, Status: txn.Status}, nil

	case GatewayStatusPartiallyPaid:
		// Recorded but not completed: the transaction waits for a terminal
		// callback reporting full payment, failure or expiry.
		if payload.ActuallyPaid != "" {
			txn.Annotate(metaActuallyPaid, payload.ActuallyPaid)
		}
		if noop, err := r.persist(ctx, txn, payload.PaymentStatus); noop != nil || err != nil {
			return noop, err
		}
		r.logger.Warn("Partial payment recorded, transaction stays pending", map[string]any{
			"transaction_id": txn.TransactionID,
			"actually_paid":  payload.ActuallyPaid,
		})
		return &CallbackResult{Applied: true, TransactionID: txn.TransactionID, Status: txn.Status}, nil

	case GatewayStatusConfirmed, GatewayStatusFinished:
		if noop, err := r.persist(ctx, txn, payload.PaymentStatus); noop != nil || err != nil {
			return noop, err
		}
		if _, err := r.ledger.Complete(ctx, txn.TransactionID); err != nil {
			if errs.IsAlreadyTerminalError(err) {
				// Lost the race against a concurrent delivery of the same
				// callback; the credit was applied exactly once.
				return &CallbackResult{Applied: true, Noop: true, TransactionID: txn.TransactionID, Status: entity.TxStatusCompleted}, nil
			}
			return nil, err
		}
		return &CallbackResult{Applied: true, TransactionID: txn.TransactionID, Status: entity.TxStatusCompleted}, nil

	case GatewayStatusFailed, GatewayStatusExpired, GatewayStatusRefunded:
		if noop, err := r.persist(ctx, txn, payload.PaymentStatus); noop != nil || err != nil {
			return noop, err
		}
		if err := r.ledger.Fail(ctx, txn.TransactionID, "gateway reported "+payload.PaymentStatus); err != nil {
			if errs.IsAlreadyTerminalError(err) {
				return &CallbackResult{Applied: true, Noop: true, TransactionID: txn.TransactionID, Status: txn.Status}, nil
			}
			return nil, err
		}
		return &CallbackResult{Applied: true, TransactionID: txn.TransactionID, Status: entity.TxStatusFailed}, nil

	default:
		return nil, fmt.Errorf("%w: unknown gateway payment status %q", errs.ErrValidation, payload.PaymentStatus)
	}
}

// persist writes the annotated snapshot through the pending-status guard in
// storage. A terminal-status rejection means another delivery finalized the
// transaction between our read and this write; the delivery is absorbed as a
// no-op against the row's current state instead of regressing it.
func (r *Reconciler) persist(ctx context.Context, txn *entity.Transaction, gatewayStatus string) (*CallbackResult, error) {
	err := r.txnRepo.Update(ctx, txn)
	if err == nil {
		return nil, nil
	}
	if !errs.IsAlreadyTerminalError(err) {
		return nil, err
	}

	current, getErr := r.txnRepo.GetByTransactionID(ctx, txn.TransactionID)
	if getErr != nil {
		return nil, getErr
	}
	r.logger.Info("Callback lost race against concurrent delivery, no-op", map[string]any{
		"transaction_id": txn.TransactionID,
		"status":         current.Status,
		"gateway_status": gatewayStatus,
	})
	return &CallbackResult{Applied: true, Noop: true, TransactionID: txn.TransactionID, Status: current.Status}, nil
}

// GetStatus returns the reconciled snapshot for a gateway payment id
func (r *Reconciler) GetStatus(ctx context.Context, gatewayPaymentID string) (*StatusSnapshot, error) {
	txn, err := r.txnRepo.GetByGatewayPaymentID(ctx, r.gateway.Name(), gatewayPaymentID)
	if err != nil {
		return nil, err
	}

	return &StatusSnapshot{
		PaymentID:    txn.GatewayPaymentID,
		OrderRef:     txn.OrderRef,
		Status:       txn.Status,
		AmountCents:  txn.AmountCents,
		Currency:     txn.Currency,
		PayCurrency:  txn.PayCurrency,
		PayAmount:    txn.Metadata[metaPayAmount],
		ActuallyPaid: txn.Metadata[metaActuallyPaid],
		CreatedAt:    txn.CreatedAt,
		CompletedAt:  txn.CompletedAt,
	}, nil
}

func (r *Reconciler) lookup(ctx context.Context, payload CallbackPayload) (*entity.Transaction, error) {
	if payload.OrderRef != "" {
		txn, err := r.txnRepo.GetByOrderRef(ctx, payload.OrderRef)
		if err == nil {
			return txn, nil
		}
		if !errs.IsNotFoundError(err) {
			return nil, err
		}
	}

	if payload.PaymentID != "" {
		txn, err := r.txnRepo.GetByGatewayPaymentID(ctx, r.gateway.Name(), payload.PaymentID)
		if err == nil {
			return txn, nil
		}
		if !errs.IsNotFoundError(err) {
			return nil, err
		}
	}

	r.logger.Warn("Callback for unknown order", map[string]any{
		"order_ref":  payload.OrderRef,
		"payment_id": payload.PaymentID,
	})
	return nil, fmt.Errorf("%w: no transaction for order ref %q", errs.ErrOrderNotFound, payload.OrderRef)
}
