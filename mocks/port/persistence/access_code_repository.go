package persistence

import (
	"context"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockAccessCodeRepository is a mock implementation of the AccessCodeRepository interface
type MockAccessCodeRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockAccessCodeRepository) Create(ctx context.Context, code *entity.AccessCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// ReserveForOrder mocks the ReserveForOrder method
func (m *MockAccessCodeRepository) ReserveForOrder(ctx context.Context, productID, orderID uint64, quantity int) ([]uint64, error) {
	args := m.Called(ctx, productID, orderID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

// FinalizeForOrder mocks the FinalizeForOrder method
func (m *MockAccessCodeRepository) FinalizeForOrder(ctx context.Context, orderID uint64, codeIDs []uint64) error {
	args := m.Called(ctx, orderID, codeIDs)
	return args.Error(0)
}

// ReleaseForOrder mocks the ReleaseForOrder method
func (m *MockAccessCodeRepository) ReleaseForOrder(ctx context.Context, orderID uint64) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

// ListByOrder mocks the ListByOrder method
func (m *MockAccessCodeRepository) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.AccessCode, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AccessCode), args.Error(1)
}

// CountAvailable mocks the CountAvailable method
func (m *MockAccessCodeRepository) CountAvailable(ctx context.Context, productID uint64) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}
