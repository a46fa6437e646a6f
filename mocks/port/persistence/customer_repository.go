package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockCustomerRepository is a mock implementation of the CustomerRepository interface
type MockCustomerRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method
func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint64) (*entity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

// Create mocks the Create method
func (m *MockCustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
