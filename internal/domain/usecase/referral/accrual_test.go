package referral

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
	mcore "github.com/kiarash-asgari/storefront-core/mocks/port/core"
	mpersistence "github.com/kiarash-asgari/storefront-core/mocks/port/persistence"
)

func TestAccrual_AccrueForOrder(t *testing.T) {
	// Define fixed time for consistent testing
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	// Common test variables
	ctx := context.Background()
	buyerID := uint64(42)
	referrerID := uint64(7)

	completedOrder := func(t *testing.T, netCents int64) *entity.Order {
		t.Helper()
		tp := new(mcore.MockTimeProvider)
		tp.On("Now").Return(fixedTime)
		order, err := entity.NewOrder("ord-1", buyerID, 3, 1, netCents, 0, entity.DeliveryAutomatic, tp)
		assert.NoError(t, err)
		assert.NoError(t, order.BeginProcessing())
		order.MarkPaid(tp)
		assert.NoError(t, order.Complete(1, tp))
		return order
	}

	newAccrual := func(txnRepo *mpersistence.MockTransactionRepository, customerRepo *mpersistence.MockCustomerRepository, logger *mcore.MockLogger) *Accrual {
		tp := new(mcore.MockTimeProvider)
		tp.On("Now").Return(fixedTime).Maybe()
		ldgr := ledger.New(new(mpersistence.MockUnitOfWork), txnRepo, new(mpersistence.MockAccountLockRepository), tp, logger, 5*time.Second)
		return New(ldgr, customerRepo, Config{CommissionRate: 0.05, MinimumPayoutCents: 1000}, tp, logger)
	}

	t.Run("should accrue a floored commission for the referrer", func(t *testing.T) {
		// Arrange
		mockTxnRepo := new(mpersistence.MockTransactionRepository)
		mockCustomerRepo := new(mpersistence.MockCustomerRepository)
		mockLogger := new(mcore.MockLogger)

		buyer := &entity.Customer{ID: buyerID, ReferrerID: &referrerID}
		mockCustomerRepo.On("GetByID", ctx, buyerID).Return(buyer, nil)

		// 999 * 0.05 = 49.95, floored to 49
		order := completedOrder(t, 999)

		mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.OwnerID == referrerID &&
				txn.Kind == entity.KindReferralCommission &&
				txn.AmountCents == 49 &&
				txn.Status == entity.TxStatusPending
		})).Return(nil)
		mockLogger.On("Info", "Pending transaction recorded", mock.AnythingOfType("map[string]interface {}")).Return()
		mockLogger.On("Info", "Referral commission accrued", mock.AnythingOfType("map[string]interface {}")).Return()

		accrual := newAccrual(mockTxnRepo, mockCustomerRepo, mockLogger)

		// Act
		err := accrual.AccrueForOrder(ctx, order)

		// Assert
		assert.NoError(t, err)
		mockTxnRepo.AssertExpectations(t)
		mockCustomerRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should do nothing for a buyer without a referrer", func(t *testing.T) {
		// Arrange
		mockTxnRepo := new(mpersistence.MockTransactionRepository)
		mockCustomerRepo := new(mpersistence.MockCustomerRepository)
		mockLogger := new(mcore.MockLogger)

		buyer := &entity.Customer{ID: buyerID}
		mockCustomerRepo.On("GetByID", ctx, buyerID).Return(buyer, nil)

		accrual := newAccrual(mockTxnRepo, mockCustomerRepo, mockLogger)

		// Act
		err := accrual.AccrueForOrder(ctx, completedOrder(t, 10000))

		// Assert
		assert.NoError(t, err)
		mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should skip a commission that floors to zero", func(t *testing.T) {
		// Arrange
		mockTxnRepo := new(mpersistence.MockTransactionRepository)
		mockCustomerRepo := new(mpersistence.MockCustomerRepository)
		mockLogger := new(mcore.MockLogger)

		buyer := &entity.Customer{ID: buyerID, ReferrerID: &referrerID}
		mockCustomerRepo.On("GetByID", ctx, buyerID).Return(buyer, nil)

		accrual := newAccrual(mockTxnRepo, mockCustomerRepo, mockLogger)

		// Act
		// 10 * 0.05 = 0.5, floored to 0
		err := accrual.AccrueForOrder(ctx, completedOrder(t, 10))

		// Assert
		assert.NoError(t, err)
		mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should reject orders that are not completed", func(t *testing.T) {
		// Arrange
		mockTxnRepo := new(mpersistence.MockTransactionRepository)
		mockCustomerRepo := new(mpersistence.MockCustomerRepository)
		mockLogger := new(mcore.MockLogger)

		tp := new(mcore.MockTimeProvider)
		tp.On("Now").Return(fixedTime)
		order, err := entity.NewOrder("ord-1", buyerID, 3, 1, 10000, 0, entity.DeliveryAutomatic, tp)
		assert.NoError(t, err)

		accrual := newAccrual(mockTxnRepo, mockCustomerRepo, mockLogger)

		// Act
		err = accrual.AccrueForOrder(ctx, order)

		// Assert
		assert.ErrorIs(t, err, errs.ErrValidation)
		mockCustomerRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("should surface an unknown buyer", func(t *testing.T) {
		// Arrange
		mockTxnRepo := new(mpersistence.MockTransactionRepository)
		mockCustomerRepo := new(mpersistence.MockCustomerRepository)
		mockLogger := new(mcore.MockLogger)

		mockCustomerRepo.On("GetByID", ctx, buyerID).Return(nil, errs.ErrCustomerNotFound)

		accrual := newAccrual(mockTxnRepo, mockCustomerRepo, mockLogger)

		// Act
		err := accrual.AccrueForOrder(ctx, completedOrder(t, 10000))

		// Assert
		assert.ErrorIs(t, err, errs.ErrCustomerNotFound)
	})
}
