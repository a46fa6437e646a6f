package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

func TestErrorClassifier_IsDuplicateKeyError(t *testing.T) {
	classifier := NewErrorClassifier()

	assert.True(t, classifier.IsDuplicateKeyError(errors.New("ERROR: duplicate key value violates unique constraint \"idx_gateway_payment\" (SQLSTATE 23505)")))
	assert.True(t, classifier.IsDuplicateKeyError(errors.New("UNIQUE constraint failed: transactions.transaction_id")))
	assert.False(t, classifier.IsDuplicateKeyError(errors.New("connection refused")))
	assert.False(t, classifier.IsDuplicateKeyError(nil))
}

func TestErrorClassifier_IsSerializationError(t *testing.T) {
	classifier := NewErrorClassifier()

	assert.True(t, classifier.IsSerializationError(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")))
	assert.True(t, classifier.IsSerializationError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.False(t, classifier.IsSerializationError(errors.New("duplicate key value")))
	assert.False(t, classifier.IsSerializationError(nil))
}

func TestErrorClassifier_WrapStorageError(t *testing.T) {
	classifier := NewErrorClassifier()

	t.Run("should wrap serialization failures as retryable conflicts", func(t *testing.T) {
		err := classifier.wrapStorageError(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"))
		assert.ErrorIs(t, err, errs.ErrConcurrencyConflict)
		assert.True(t, errs.IsConflictError(err))
	})

	t.Run("should wrap deadlocks as retryable conflicts", func(t *testing.T) {
		err := classifier.wrapStorageError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"))
		assert.ErrorIs(t, err, errs.ErrConcurrencyConflict)
	})

	t.Run("should wrap everything else as a connection failure", func(t *testing.T) {
		err := classifier.wrapStorageError(errors.New("dial tcp 127.0.0.1:5432: connection refused"))
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.False(t, errs.IsConflictError(err))
	})
}
