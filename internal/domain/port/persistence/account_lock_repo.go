package persistence

import (
	"context"
	"time"
)

// AccountLockRepository serializes ledger mutations per owner. Locks carry
// an expiry so a crashed holder cannot wedge the account forever.
type AccountLockRepository interface {
	// AcquireLock attempts to take the owner's lock for the given duration
	//
	// Possible errors:
	// - ErrAccountLocked: another operation holds an unexpired lock
	// - ErrDatabaseConnection: storage unreachable
	AcquireLock(ctx context.Context, ownerID uint64, duration time.Duration) error

	// ReleaseLock releases a previously acquired lock
	//
	// Possible errors:
	// - ErrDatabaseConnection: storage unreachable
	ReleaseLock(ctx context.Context, ownerID uint64) error
}
