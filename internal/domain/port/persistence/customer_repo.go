package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
)

// CustomerRepository defines customer account storage operations
type CustomerRepository interface {
	// GetByID retrieves a customer by id
	//
	// Possible errors:
	// - ErrCustomerNotFound, ErrDatabaseConnection
	GetByID(ctx context.Context, id uint64) (*entity.Customer, error)

	// Create persists a new customer
	//
	// Possible errors:
	// - ErrDuplicateTransaction: customer id already exists
	// - ErrDatabaseConnection: storage unreachable
	Create(ctx context.Context, customer *entity.Customer) error
}
