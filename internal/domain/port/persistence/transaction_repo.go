package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
)

// TransactionRepository defines the ledger's storage operations
type TransactionRepository interface {
	// Create persists a new transaction
	//
	// Possible errors:
	// - ErrDuplicateTransaction: external id or gateway payment id already exists
	// - ErrDatabaseConnection: storage unreachable
	Create(ctx context.Context, transaction *entity.Transaction) error

	// Update writes status, gateway linkage, metadata and completion fields
	// of an existing transaction
	//
	// Possible errors:
	// - ErrTransactionNotFound: no transaction with the given external id
	// - ErrDatabaseConnection: storage unreachable
	Update(ctx context.Context, transaction *entity.Transaction) error

	// GetByTransactionID retrieves a transaction by its external id
	//
	// Possible errors:
	// - ErrTransactionNotFound, ErrDatabaseConnection
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error)

	// GetByOrderRef retrieves a transaction by its gateway correlation key.
	// Used by webhook reconciliation before the gateway payment id is linked.
	//
	// Possible errors:
	// - ErrTransactionNotFound, ErrDatabaseConnection
	GetByOrderRef(ctx context.Context, orderRef string) (*entity.Transaction, error)

	// GetByGatewayPaymentID retrieves a transaction by the gateway-assigned
	// payment id
	//
	// Possible errors:
	// - ErrPaymentNotFound, ErrDatabaseConnection
	GetByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entity.Transaction, error)

	// ListByOrderRef returns every transaction correlated with an order,
	// newest first. Used for refund bookkeeping and operator views.
	ListByOrderRef(ctx context.Context, orderRef string) ([]*entity.Transaction, error)

	// SumCompletedNet computes the owner's balance: the sum of net cents over
	// completed transactions, under the caller's transaction snapshot
	//
	// Possible errors:
	// - ErrDatabaseConnection
	SumCompletedNet(ctx context.Context, ownerID uint64) (int64, error)
}
