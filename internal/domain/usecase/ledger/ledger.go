package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
)

// Ledger is the append-oriented transaction store. Balances are never stored;
// they are derived as the sum of net cents over completed transactions.
// All status mutations for one owner are serialized through the account lock,
// so two concurrent purchases can never both pass a sufficiency check against
// a stale balance.
type Ledger struct {
	uow          persistence.UnitOfWork
	txnRepo      persistence.TransactionRepository
	lockRepo     persistence.AccountLockRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	lockTimeout  time.Duration
}

// New creates a Ledger
func New(
	uow persistence.UnitOfWork,
	txnRepo persistence.TransactionRepository,
	lockRepo persistence.AccountLockRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	lockTimeout time.Duration,
) *Ledger {
	return &Ledger{
		uow:          uow,
		txnRepo:      txnRepo,
		lockRepo:     lockRepo,
		timeProvider: timeProvider,
		logger:       logger,
		lockTimeout:  lockTimeout,
	}
}

// RecordPending creates a pending transaction. The amount sign must match
// the kind convention (purchases negative, everything else non-negative);
// violations are ValidationErrors and nothing is persisted.
func (l *Ledger) RecordPending(
	ctx context.Context,
	transactionID string,
	ownerID uint64,
	kind entity.TransactionKind,
	amountCents, feeCents int64,
	orderRef string,
	metadata map[string]string,
) (*entity.Transaction, error) {
	txn, err := entity.NewTransaction(transactionID, ownerID, kind, amountCents, feeCents, orderRef, metadata, l.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := l.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record pending transaction: %w", err)
	}

	l.logger.Info("Pending transaction recorded", map[string]any{
		"transaction_id": txn.TransactionID,
		"owner_id":       ownerID,
		"kind":           kind,
		"amount_cents":   amountCents,
		"order_ref":      orderRef,
	})
	return txn, nil
}

// Complete transitions a pending transaction to completed exactly once and
// returns the balance delta (the transaction's net cents). A purchase debit
// is completed only if the owner's balance covers it; otherwise the
// transaction is marked failed and an InsufficientFundsError is returned.
// A transaction that already reached a terminal status yields
// ErrAlreadyTerminal, which idempotent callers treat as a no-op.
func (l *Ledger) Complete(ctx context.Context, transactionID string) (int64, error) {
	txn, err := l.txnRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return 0, err
	}

	if err := l.lockRepo.AcquireLock(ctx, txn.OwnerID, l.lockTimeout); err != nil {
		return 0, err
	}
	defer l.releaseLock(ctx, txn.OwnerID)

	txCtx, err := l.uow.Begin(ctx)
	if err != nil {
		return 0, err
	}

	repo := l.uow.GetTransactionRepository(txCtx)

	// Re-read inside the transaction so the status guard and the balance
	// check share one snapshot.
	txn, err = repo.GetByTransactionID(txCtx, transactionID)
	if err != nil {
		_ = l.uow.Rollback(txCtx)
		return 0, err
	}

	if txn.IsTerminal() {
		_ = l.uow.Rollback(txCtx)
		return 0, fmt.Errorf("%w: %s is %s", errs.ErrAlreadyTerminal, txn.TransactionID, txn.Status)
	}

	if txn.IsDebit() {
		balance, err := repo.SumCompletedNet(txCtx, txn.OwnerID)
		if err != nil {
			_ = l.uow.Rollback(txCtx)
			return 0, err
		}
		if balance+txn.NetCents < 0 {
			// The debit is blocked: the transaction fails immediately
			// instead of lingering pending.
			if err := txn.MarkFailed(l.timeProvider, "insufficient funds"); err != nil {
				_ = l.uow.Rollback(txCtx)
				return 0, err
			}
			if err := repo.Update(txCtx, txn); err != nil {
				_ = l.uow.Rollback(txCtx)
				return 0, err
			}
			if err := l.uow.Commit(txCtx); err != nil {
				return 0, err
			}
			l.logger.Warn("Debit blocked by insufficient funds", map[string]any{
				"transaction_id": txn.TransactionID,
				"owner_id":       txn.OwnerID,
				"required_cents": -txn.NetCents,
				"balance_cents":  balance,
			})
			return 0, errs.NewInsufficientFundsError(txn.OwnerID, -txn.NetCents, balance)
		}
	}

	if err := txn.MarkCompleted(l.timeProvider); err != nil {
		_ = l.uow.Rollback(txCtx)
		return 0, err
	}
	if err := repo.Update(txCtx, txn); err != nil {
		_ = l.uow.Rollback(txCtx)
		return 0, err
	}
	if err := l.uow.Commit(txCtx); err != nil {
		return 0, err
	}

	l.logger.Info("Transaction completed", map[string]any{
		"transaction_id": txn.TransactionID,
		"owner_id":       txn.OwnerID,
		"kind":           txn.Kind,
		"net_cents":      txn.NetCents,
	})
	return txn.NetCents, nil
}

// Fail transitions a pending transaction to failed with a reason
func (l *Ledger) Fail(ctx context.Context, transactionID, reason string) error {
	return l.terminate(ctx, transactionID, reason, func(txn *entity.Transaction) error {
		return txn.MarkFailed(l.timeProvider, reason)
	})
}

// Cancel transitions a pending transaction to cancelled with a reason
func (l *Ledger) Cancel(ctx context.Context, transactionID, reason string) error {
	return l.terminate(ctx, transactionID, reason, func(txn *entity.Transaction) error {
		return txn.MarkCancelled(l.timeProvider, reason)
	})
}

// BalanceOf derives the owner's balance from completed transactions
func (l *Ledger) BalanceOf(ctx context.Context, ownerID uint64) (int64, error) {
	if ownerID == 0 {
		return 0, fmt.Errorf("%w: owner id must be positive", errs.ErrValidation)
	}
	return l.txnRepo.SumCompletedNet(ctx, ownerID)
}

// terminate applies a pending -> terminal transition under the owner's lock
func (l *Ledger) terminate(ctx context.Context, transactionID, reason string, mark func(*entity.Transaction) error) error {
	txn, err := l.txnRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := l.lockRepo.AcquireLock(ctx, txn.OwnerID, l.lockTimeout); err != nil {
		return err
	}
	defer l.releaseLock(ctx, txn.OwnerID)

	txn, err = l.txnRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := mark(txn); err != nil {
		return err
	}
	if err := l.txnRepo.Update(ctx, txn); err != nil {
		return err
	}

	l.logger.Info("Transaction terminated", map[string]any{
		"transaction_id": txn.TransactionID,
		"owner_id":       txn.OwnerID,
		"status":         txn.Status,
		"reason":         reason,
	})
	return nil
}

func (l *Ledger) releaseLock(ctx context.Context, ownerID uint64) {
	if err := l.lockRepo.ReleaseLock(ctx, ownerID); err != nil {
		l.logger.Error("Failed to release account lock", map[string]any{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
	}
}
