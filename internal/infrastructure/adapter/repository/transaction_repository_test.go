package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/database"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/logger"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/repository"
	timeprovider "github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/time"
)

func newTransactionTestEnv(t *testing.T) *repository.TransactionRepository {
	t.Helper()

	log := logger.NewNoopLogger()
	testDB := database.NewTestDB(t, log)
	testDB.Setup(t)
	testDB.TruncateAll(t)
	t.Cleanup(func() { testDB.Close(t) })

	return repository.NewTransactionRepository(testDB.DB(), log)
}

func TestTransactionRepository_Update(t *testing.T) {
	ctx := context.Background()
	tp := timeprovider.NewRealTimeProvider()

	t.Run("should reject a stale pending write over a completed row", func(t *testing.T) {
		// Arrange: two snapshots of the same pending deposit, as two
		// concurrent webhook deliveries would hold them
		repo := newTransactionTestEnv(t)

		txn, err := entity.NewTransaction("tx-race", 42, entity.KindDeposit, 10000, 0, "ref-race", nil, tp)
		assert.NoError(t, err)
		assert.NoError(t, repo.Create(ctx, txn))

		stale, err := repo.GetByTransactionID(ctx, "tx-race")
		assert.NoError(t, err)

		// The first delivery completes the deposit
		assert.NoError(t, txn.MarkCompleted(tp))
		assert.NoError(t, repo.Update(ctx, txn))

		// Act: the delayed delivery flushes its pending snapshot
		stale.Annotate("gateway_status", "waiting")
		err = repo.Update(ctx, stale)

		// Assert: the write is rejected and the row keeps its terminal state
		assert.ErrorIs(t, err, errs.ErrAlreadyTerminal)

		current, getErr := repo.GetByTransactionID(ctx, "tx-race")
		assert.NoError(t, getErr)
		assert.Equal(t, entity.TxStatusCompleted, current.Status)
		assert.NotNil(t, current.CompletedAt)
		assert.NotContains(t, current.Metadata, "gateway_status")
	})

	t.Run("should apply updates while the row is pending", func(t *testing.T) {
		// Arrange
		repo := newTransactionTestEnv(t)

		txn, err := entity.NewTransaction("tx-pend", 42, entity.KindDeposit, 10000, 0, "ref-pend", nil, tp)
		assert.NoError(t, err)
		assert.NoError(t, repo.Create(ctx, txn))

		// Act
		txn.AttachGateway("nowpay", "pay-pend", "https://pay.example/i/pay-pend", "btc")
		err = repo.Update(ctx, txn)

		// Assert
		assert.NoError(t, err)
		current, getErr := repo.GetByTransactionID(ctx, "tx-pend")
		assert.NoError(t, getErr)
		assert.Equal(t, "pay-pend", current.GatewayPaymentID)
		assert.Equal(t, entity.TxStatusPending, current.Status)
	})

	t.Run("should report an unknown transaction id", func(t *testing.T) {
		// Arrange
		repo := newTransactionTestEnv(t)

		ghost, err := entity.NewTransaction("tx-ghost", 42, entity.KindDeposit, 10000, 0, "ref-ghost", nil, tp)
		assert.NoError(t, err)

		// Act
		err = repo.Update(ctx, ghost)

		// Assert
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	})
}
