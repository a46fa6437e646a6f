package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
)

// AccessCodeRepository defines the inventory pool's storage operations. The
// claim must be a single atomic select-and-mark: two concurrent reservations
// for the same product must never observe and claim an overlapping set.
type AccessCodeRepository interface {
	// Create adds a code to a product's pool (inventory provisioning)
	Create(ctx context.Context, code *entity.AccessCode) error

	// ReserveForOrder atomically claims exactly quantity available codes for
	// the product and associates them with the order. All-or-nothing: on a
	// shortfall no code is reserved.
	//
	// Possible errors:
	// - ErrInventoryExhausted: fewer than quantity codes available
	// - ErrDatabaseConnection: storage unreachable
	ReserveForOrder(ctx context.Context, productID, orderID uint64, quantity int) ([]uint64, error)

	// FinalizeForOrder transitions the order's reserved codes to sold,
	// stamping delivered_at. Idempotent: codes already sold for this order
	// are left untouched.
	FinalizeForOrder(ctx context.Context, orderID uint64, codeIDs []uint64) error

	// ReleaseForOrder returns every reserved code of the order to available,
	// clearing the order reference and reserved_at. Returns the number of
	// codes released; zero reserved codes is a successful no-op.
	ReleaseForOrder(ctx context.Context, orderID uint64) (int, error)

	// ListByOrder returns the codes currently referencing the order
	ListByOrder(ctx context.Context, orderID uint64) ([]*entity.AccessCode, error)

	// CountAvailable reports the free pool size for a product
	CountAvailable(ctx context.Context, productID uint64) (int, error)
}
