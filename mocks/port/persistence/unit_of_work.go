package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of the UnitOfWork interface
type MockUnitOfWork struct {
	mock.Mock
}

// Begin mocks the Begin method
func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

// Commit mocks the Commit method
func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Rollback mocks the Rollback method
func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetTransactionRepository mocks the GetTransactionRepository method
func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistence.TransactionRepository)
}

// GetOrderRepository mocks the GetOrderRepository method
func (m *MockUnitOfWork) GetOrderRepository(ctx context.Context) persistence.OrderRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistence.OrderRepository)
}

// GetAccessCodeRepository mocks the GetAccessCodeRepository method
func (m *MockUnitOfWork) GetAccessCodeRepository(ctx context.Context) persistence.AccessCodeRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistence.AccessCodeRepository)
}

// GetCustomerRepository mocks the GetCustomerRepository method
func (m *MockUnitOfWork) GetCustomerRepository(ctx context.Context) persistence.CustomerRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistence.CustomerRepository)
}
