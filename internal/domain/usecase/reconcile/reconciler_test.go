package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	gwport "github.com/kiarash-asgari/storefront-core/internal/domain/port/gateway"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
	mcore "github.com/kiarash-asgari/storefront-core/mocks/port/core"
	mgateway "github.com/kiarash-asgari/storefront-core/mocks/port/gateway"
	mpersistence "github.com/kiarash-asgari/storefront-core/mocks/port/persistence"
)

var testTime = time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

// reconcilerFixture bundles the mocked collaborators of one test case
type reconcilerFixture struct {
	uow      *mpersistence.MockUnitOfWork
	txnRepo  *mpersistence.MockTransactionRepository
	lockRepo *mpersistence.MockAccountLockRepository
	gateway  *mgateway.MockPaymentGateway
	tp       *mcore.MockTimeProvider
	logger   *mcore.MockLogger

	reconciler *Reconciler
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		uow:      new(mpersistence.MockUnitOfWork),
		txnRepo:  new(mpersistence.MockTransactionRepository),
		lockRepo: new(mpersistence.MockAccountLockRepository),
		gateway:  new(mgateway.MockPaymentGateway),
		tp:       new(mcore.MockTimeProvider),
		logger:   new(mcore.MockLogger),
	}

	f.tp.On("Now").Return(testTime).Maybe()
	f.gateway.On("Name").Return("nowpay").Maybe()
	f.logger.On("Debug", mock.Anything, mock.Anything).Maybe().Return()
	f.logger.On("Info", mock.Anything, mock.Anything).Maybe().Return()
	f.logger.On("Warn", mock.Anything, mock.Anything).Maybe().Return()
	f.logger.On("Error", mock.Anything, mock.Anything).Maybe().Return()

	ldgr := ledger.New(f.uow, f.txnRepo, f.lockRepo, f.tp, f.logger, 5*time.Second)
	f.reconciler = New(ldgr, f.txnRepo, f.gateway, NewSignatureVerifier("shared-secret"), Config{
		MinDepositCents: 500,
		MaxDepositCents: 500000,
		InvoiceTimeout:  30 * time.Second,
	}, f.tp, f.logger)

	return f
}

// expectLedgerTransition wires the unit-of-work and lock plumbing a ledger
// status transition runs through
func (f *reconcilerFixture) expectLedgerTransition(ctx context.Context, ownerID uint64) {
	f.lockRepo.On("AcquireLock", ctx, ownerID, 5*time.Second).Return(nil)
	f.lockRepo.On("ReleaseLock", ctx, ownerID).Return(nil)
	f.uow.On("Begin", ctx).Return(ctx, nil).Maybe()
	f.uow.On("GetTransactionRepository", ctx).Return(f.txnRepo).Maybe()
	f.uow.On("Commit", ctx).Return(nil).Maybe()
}

func pendingDeposit(t *testing.T, amountCents int64) *entity.Transaction {
	t.Helper()
	tp := new(mcore.MockTimeProvider)
	tp.On("Now").Return(testTime)
	txn, err := entity.NewTransaction("tx-dep", 42, entity.KindDeposit, amountCents, 0, "ref-1", nil, tp)
	assert.NoError(t, err)
	return txn
}

func TestReconciler_CreateInvoice(t *testing.T) {
	ctx := context.Background()
	ownerID := uint64(42)

	t.Run("should mint an invoice and link the gateway identity", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		f.tp.On("WithTimeout", ctx, 30*time.Second).Return(ctx, context.CancelFunc(func() {}))
		f.txnRepo.On("Create", ctx, mock.AnythingOfType("*entity.Transaction")).Return(nil)
		f.gateway.On("CreateInvoice", ctx, mock.MatchedBy(func(req gwport.InvoiceRequest) bool {
			return req.AmountCents == 10000 && req.PayerID == ownerID && req.PayCurrency == "btc"
		})).Return(&gwport.InvoiceResponse{
			PaymentID:   "pay-1",
			InvoiceURL:  "https://pay.example/i/pay-1",
			PayCurrency: "btc",
		}, nil)
		f.txnRepo.On("Update", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.GatewayPaymentID == "pay-1" && txn.Gateway == "nowpay"
		})).Return(nil)

		// Act
		handle, err := f.reconciler.CreateInvoice(ctx, ownerID, 10000, "btc")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "pay-1", handle.PaymentID)
		assert.Equal(t, "https://pay.example/i/pay-1", handle.InvoiceURL)
		assert.NotEmpty(t, handle.TransactionID)
		assert.NotEmpty(t, handle.OrderRef)

		f.txnRepo.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})

	t.Run("should reject deposits outside the configured bounds", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		// Act + Assert
		_, err := f.reconciler.CreateInvoice(ctx, ownerID, 499, "btc")
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = f.reconciler.CreateInvoice(ctx, ownerID, 500001, "btc")
		assert.ErrorIs(t, err, errs.ErrValidation)

		f.txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	})

	t.Run("should leave the transaction pending when the gateway fails", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		f.tp.On("WithTimeout", ctx, 30*time.Second).Return(ctx, context.CancelFunc(func() {}))
		f.txnRepo.On("Create", ctx, mock.AnythingOfType("*entity.Transaction")).Return(nil)
		f.gateway.On("CreateInvoice", ctx, mock.AnythingOfType("gateway.InvoiceRequest")).
			Return(nil, errors.New("connection timed out"))

		// Act
		handle, err := f.reconciler.CreateInvoice(ctx, ownerID, 10000, "btc")

		// Assert
		assert.Error(t, err)
		assert.True(t, errs.IsGatewayError(err))
		assert.Nil(t, handle)
		f.txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestReconciler_ApplyCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("should complete the deposit on a finished callback", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)
		f.txnRepo.On("GetByTransactionID", ctx, "tx-dep").Return(txn, nil)
		f.txnRepo.On("Update", ctx, txn).Return(nil)
		f.expectLedgerTransition(ctx, txn.OwnerID)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusFinished,
			PayAmount:     "0.0042",
			PayCurrency:   "btc",
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Applied)
		assert.False(t, result.Noop)
		assert.Equal(t, entity.TxStatusCompleted, result.Status)
		assert.Equal(t, entity.TxStatusCompleted, txn.Status)
		assert.Equal(t, "pay-1", txn.GatewayPaymentID)
		assert.Equal(t, "finished", txn.Metadata["gateway_status"])

		f.lockRepo.AssertExpectations(t)
	})

	t.Run("should absorb a replayed callback as a no-op", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)
		assert.NoError(t, txn.MarkCompleted(f.tp))

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusFinished,
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Noop)
		assert.Equal(t, entity.TxStatusCompleted, result.Status)
		f.txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should not regress a deposit finalized between read and write", func(t *testing.T) {
		// A delayed waiting delivery reads the row while it is still pending,
		// but another delivery completes the deposit before the stale write
		// lands. The pending-status guard in storage rejects the write and
		// the delivery resolves as a no-op against the finalized row.

		// Arrange
		f := newReconcilerFixture()
		stale := pendingDeposit(t, 10000)
		done := pendingDeposit(t, 10000)
		assert.NoError(t, done.MarkCompleted(f.tp))

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(stale, nil)
		f.txnRepo.On("Update", ctx, stale).
			Return(fmt.Errorf("%w: tx-dep is completed", errs.ErrAlreadyTerminal))
		f.txnRepo.On("GetByTransactionID", ctx, "tx-dep").Return(done, nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusWaiting,
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Noop)
		assert.Equal(t, entity.TxStatusCompleted, result.Status)
		f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
		f.txnRepo.AssertExpectations(t)
	})

	t.Run("should absorb a finished delivery that lost the persistence race", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		stale := pendingDeposit(t, 10000)
		done := pendingDeposit(t, 10000)
		assert.NoError(t, done.MarkCompleted(f.tp))

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(stale, nil)
		f.txnRepo.On("Update", ctx, stale).
			Return(fmt.Errorf("%w: tx-dep is completed", errs.ErrAlreadyTerminal))
		f.txnRepo.On("GetByTransactionID", ctx, "tx-dep").Return(done, nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusFinished,
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Noop)
		assert.Equal(t, entity.TxStatusCompleted, result.Status)
		f.uow.AssertNotCalled(t, "Begin", mock.Anything)
		f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should keep a partially paid deposit pending", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)
		f.txnRepo.On("Update", ctx, txn).Return(nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusPartiallyPaid,
			ActuallyPaid:  "0.0021",
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, entity.TxStatusPending, result.Status)
		assert.Equal(t, "0.0021", txn.Metadata["actually_paid"])
		f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should record intermediate statuses without completing", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)
		f.txnRepo.On("Update", ctx, txn).Return(nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusConfirming,
		})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, entity.TxStatusPending, result.Status)
		assert.Equal(t, "confirming", txn.Metadata["gateway_status"])
	})

	t.Run("should fail the deposit on an expired callback", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)
		f.txnRepo.On("GetByTransactionID", ctx, "tx-dep").Return(txn, nil)
		f.txnRepo.On("Update", ctx, txn).Return(nil)
		f.expectLedgerTransition(ctx, txn.OwnerID)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			OrderRef:      "ref-1",
			PaymentStatus: GatewayStatusExpired,
		})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, entity.TxStatusFailed, result.Status)
		assert.Equal(t, entity.TxStatusFailed, txn.Status)
		assert.Equal(t, "gateway reported expired", txn.FailureReason)
	})

	t.Run("should fall back to the gateway payment id when the order ref is unknown", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)
		txn.AttachGateway("nowpay", "pay-1", "", "btc")

		f.txnRepo.On("GetByOrderRef", ctx, "other-ref").Return(nil, errs.ErrTransactionNotFound)
		f.txnRepo.On("GetByGatewayPaymentID", ctx, "nowpay", "pay-1").Return(txn, nil)
		f.txnRepo.On("Update", ctx, txn).Return(nil)

		// Act
		result, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "pay-1",
			OrderRef:      "other-ref",
			PaymentStatus: GatewayStatusWaiting,
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, result.Applied)
	})

	t.Run("should reject a callback for an unknown order", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		f.txnRepo.On("GetByOrderRef", ctx, "ghost-ref").Return(nil, errs.ErrTransactionNotFound)
		f.txnRepo.On("GetByGatewayPaymentID", ctx, "nowpay", "ghost-pay").Return(nil, errs.ErrPaymentNotFound)

		// Act
		_, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			PaymentID:     "ghost-pay",
			OrderRef:      "ghost-ref",
			PaymentStatus: GatewayStatusFinished,
		})

		// Assert
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})

	t.Run("should reject an unknown gateway status", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)

		f.txnRepo.On("GetByOrderRef", ctx, "ref-1").Return(txn, nil)

		// Act
		_, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{
			OrderRef:      "ref-1",
			PaymentStatus: "bogus",
		})

		// Assert
		assert.ErrorIs(t, err, errs.ErrValidation)
		f.txnRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("should reject a callback without a payment status", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		// Act
		_, err := f.reconciler.ApplyCallback(ctx, CallbackPayload{OrderRef: "ref-1"})

		// Assert
		assert.ErrorIs(t, err, errs.ErrValidation)
		f.txnRepo.AssertNotCalled(t, "GetByOrderRef", mock.Anything, mock.Anything)
	})
}

func TestReconciler_GetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the reconciled snapshot for a payment id", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()
		txn := pendingDeposit(t, 10000)
		txn.AttachGateway("nowpay", "pay-1", "https://pay.example/i/pay-1", "btc")
		txn.Annotate("pay_amount", "0.0042")
		txn.Annotate("actually_paid", "0.0042")

		f.txnRepo.On("GetByGatewayPaymentID", ctx, "nowpay", "pay-1").Return(txn, nil)

		// Act
		snapshot, err := f.reconciler.GetStatus(ctx, "pay-1")

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "pay-1", snapshot.PaymentID)
		assert.Equal(t, "ref-1", snapshot.OrderRef)
		assert.Equal(t, entity.TxStatusPending, snapshot.Status)
		assert.Equal(t, int64(10000), snapshot.AmountCents)
		assert.Equal(t, "0.0042", snapshot.PayAmount)
		assert.Equal(t, "0.0042", snapshot.ActuallyPaid)
	})

	t.Run("should surface an unknown payment id", func(t *testing.T) {
		// Arrange
		f := newReconcilerFixture()

		f.txnRepo.On("GetByGatewayPaymentID", ctx, "nowpay", "ghost").Return(nil, errs.ErrPaymentNotFound)

		// Act
		_, err := f.reconciler.GetStatus(ctx, "ghost")

		// Assert
		assert.ErrorIs(t, err, errs.ErrPaymentNotFound)
	})
}
