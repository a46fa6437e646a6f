package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// AccountLockRepository serializes ledger mutations per owner using an
// upsert with expiry. An expired lock can be taken over by the next caller,
// so a crashed holder cannot wedge the account.
type AccountLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountLockRepository creates a new AccountLockRepository instance
func NewAccountLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountLockRepository {
	return &AccountLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock attempts to take the owner's lock for the given duration.
// A single upsert either inserts the lock row or takes over an expired one;
// zero rows affected means another operation holds an unexpired lock.
func (r *AccountLockRepository) AcquireLock(ctx context.Context, ownerID uint64, duration time.Duration) error {
	r.logger.Debug("Attempting to acquire account lock", map[string]any{
		"owner_id": ownerID,
		"duration": duration.String(),
	})

	now := r.timeProvider.Now()
	expiresAt := now.Add(duration)

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO account_locks (owner_id, locked_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE
		SET locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE account_locks.expires_at <= ?`,
		ownerID, now, expiresAt, now, now,
		now,
	)

	if result.Error != nil {
		if isContextError(result.Error) {
			r.logger.Warn("Context timeout acquiring account lock", map[string]any{
				"owner_id": ownerID,
				"error":    result.Error.Error(),
			})
			return fmt.Errorf("lock acquisition timeout: %w", result.Error)
		}
		r.logger.Error("Database error acquiring account lock", map[string]any{
			"owner_id": ownerID,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	// The conflict update is guarded by the expiry check, so an unexpired
	// lock surfaces as zero affected rows rather than a constraint error.
	if result.RowsAffected == 0 {
		r.logger.Warn("Account is already locked", map[string]any{
			"owner_id": ownerID,
		})
		return errs.ErrAccountLocked
	}

	r.logger.Debug("Account lock acquired", map[string]any{
		"owner_id":   ownerID,
		"expires_at": expiresAt,
	})
	return nil
}

// isContextError checks if an error is related to context timeout or cancellation
func isContextError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "timeout")
}

// ReleaseLock releases a previously acquired lock. A missing row means the
// lock already expired or was released, which is fine.
func (r *AccountLockRepository) ReleaseLock(ctx context.Context, ownerID uint64) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.AccountLock{})

	if result.Error != nil {
		// The lock expires on its own, a failed delete is not critical.
		if isContextError(result.Error) {
			r.logger.Warn("Context timeout releasing account lock, lock will expire on its own", map[string]any{
				"owner_id": ownerID,
				"error":    result.Error.Error(),
			})
			return nil
		}
		r.logger.Error("Failed to release account lock", map[string]any{
			"owner_id": ownerID,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Debug("Account lock released", map[string]any{
			"owner_id": ownerID,
		})
	}
	return nil
}

// CleanupExpiredLocks removes all expired lock rows
func (r *AccountLockRepository) CleanupExpiredLocks(ctx context.Context) error {
	now := r.timeProvider.Now()

	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.AccountLock{})

	if result.Error != nil {
		r.logger.Error("Failed to clean up expired account locks", map[string]any{
			"error": result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired account locks cleaned up", map[string]any{
			"locks_removed": result.RowsAffected,
		})
	}
	return nil
}
