package mocks

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockPaymentRepo struct {
	domain.PaymentRepository
	CreatePurchaseFunc func(ctx context.Context, payment *domain.Payment, ticketIDs []int) error
	GetByIdFunc        func(ctx context.Context, id int) (*domain.Payment, error)
}

func (m *MockPaymentRepo) CreatePurchase(ctx context.Context, payment *domain.Payment, ticketIDs []int) error {
	return m.CreatePurchaseFunc(ctx, payment, ticketIDs)
}

func (m *MockPaymentRepo) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	return m.GetByIdFunc(ctx, id)
}
