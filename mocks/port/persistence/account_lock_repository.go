package persistence

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockAccountLockRepository is a mock implementation of the AccountLockRepository interface
type MockAccountLockRepository struct {
	mock.Mock
}

// AcquireLock mocks the AcquireLock method
func (m *MockAccountLockRepository) AcquireLock(ctx context.Context, ownerID uint64, duration time.Duration) error {
	args := m.Called(ctx, ownerID, duration)
	return args.Error(0)
}

// ReleaseLock mocks the ReleaseLock method
func (m *MockAccountLockRepository) ReleaseLock(ctx context.Context, ownerID uint64) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}
