package persistence

import (
	"context"
)

// UnitOfWork coordinates multi-repository mutations inside one database
// transaction so a fulfillment transition never leaves partial state
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetTransactionRepository returns a ledger repository bound to the
	// current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetOrderRepository returns an order repository bound to the current
	// transaction
	GetOrderRepository(ctx context.Context) OrderRepository

	// GetAccessCodeRepository returns an inventory repository bound to the
	// current transaction
	GetAccessCodeRepository(ctx context.Context) AccessCodeRepository

	// GetCustomerRepository returns a customer repository bound to the
	// current transaction
	GetCustomerRepository(ctx context.Context) CustomerRepository
}
