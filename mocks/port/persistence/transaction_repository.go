package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of the TransactionRepository interface
type MockTransactionRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// Update mocks the Update method
func (m *MockTransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// GetByTransactionID mocks the GetByTransactionID method
func (m *MockTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

// GetByOrderRef mocks the GetByOrderRef method
func (m *MockTransactionRepository) GetByOrderRef(ctx context.Context, orderRef string) (*entity.Transaction, error) {
	args := m.Called(ctx, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

// GetByGatewayPaymentID mocks the GetByGatewayPaymentID method
func (m *MockTransactionRepository) GetByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entity.Transaction, error) {
	args := m.Called(ctx, gateway, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

// ListByOrderRef mocks the ListByOrderRef method
func (m *MockTransactionRepository) ListByOrderRef(ctx context.Context, orderRef string) ([]*entity.Transaction, error) {
	args := m.Called(ctx, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

// SumCompletedNet mocks the SumCompletedNet method
func (m *MockTransactionRepository) SumCompletedNet(ctx context.Context, ownerID uint64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
