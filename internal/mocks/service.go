package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/dealer-billing/internal/domain"
	"github.com/segyhp/dealer-billing/internal/schedule"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateSale(ctx context.Context, request *domain.CreateSaleRequest) (*domain.CreateSaleResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateSaleResponse), args.Error(1)
}

func (m *MockBillingService) PreviewSchedule(ctx context.Context, terms domain.FinancingTerms) (*schedule.PreviewResponse, error) {
	args := m.Called(ctx, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.PreviewResponse), args.Error(1)
}

func (m *MockBillingService) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockBillingService) GetSchedule(ctx context.Context, saleID uuid.UUID) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockBillingService) GetDelinquency(ctx context.Context, saleID uuid.UUID, asOf *domain.Date) (*domain.DelinquencyResponse, error) {
	args := m.Called(ctx, saleID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DelinquencyResponse), args.Error(1)
}

func (m *MockBillingService) GetPortfolioDelinquency(ctx context.Context, asOf *domain.Date) (*domain.PortfolioDelinquencyResponse, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioDelinquencyResponse), args.Error(1)
}

func (m *MockBillingService) GetOutstanding(ctx context.Context, saleID uuid.UUID) (*domain.OutstandingResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingResponse), args.Error(1)
}

func (m *MockBillingService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.PaymentResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResponse), args.Error(1)
}

func (m *MockBillingService) GetPayments(ctx context.Context, saleID uuid.UUID) (*domain.PaymentHistoryResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentHistoryResponse), args.Error(1)
}

func (m *MockBillingService) GetReceipt(ctx context.Context, saleID uuid.UUID, sequenceNumber int) (*domain.ReceiptResponse, error) {
	args := m.Called(ctx, saleID, sequenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReceiptResponse), args.Error(1)
}

func (m *MockBillingService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	args := m.Called(ctx, saleID)
	return args.Error(0)
}
