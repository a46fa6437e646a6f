package gateway

import (
	"context"

	gwport "github.com/kiarash-asgari/storefront-core/internal/domain/port/gateway"
	"github.com/stretchr/testify/mock"
)

// MockPaymentGateway is a mock implementation of the PaymentGateway interface
type MockPaymentGateway struct {
	mock.Mock
}

// Name mocks the Name method
func (m *MockPaymentGateway) Name() string {
	args := m.Called()
	return args.String(0)
}

// CreateInvoice mocks the CreateInvoice method
func (m *MockPaymentGateway) CreateInvoice(ctx context.Context, req gwport.InvoiceRequest) (*gwport.InvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gwport.InvoiceResponse), args.Error(1)
}
