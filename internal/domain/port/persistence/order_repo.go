package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
)

// OrderRepository defines order and order-timeline storage operations
type OrderRepository interface {
	// Create persists a new order
	//
	// Possible errors:
	// - ErrDuplicateTransaction: order number already exists
	// - ErrDatabaseConnection: storage unreachable
	Create(ctx context.Context, order *entity.Order) error

	// Update writes the mutable order fields (status, payment status,
	// refunded amount, delivery files, timestamps)
	//
	// Possible errors:
	// - ErrOrderNotFound, ErrDatabaseConnection
	Update(ctx context.Context, order *entity.Order) error

	// GetByOrderNumber retrieves an order by its public order number
	//
	// Possible errors:
	// - ErrOrderNotFound, ErrDatabaseConnection
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error)

	// AppendEvent records one timeline entry for an order transition
	AppendEvent(ctx context.Context, event *entity.OrderEvent) error

	// ListEvents returns an order's timeline, oldest first
	ListEvents(ctx context.Context, orderID uint64) ([]*entity.OrderEvent, error)
}
