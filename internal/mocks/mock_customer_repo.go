package mocks

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockCustomerRepo struct {
	domain.CustomerRepository
	GetByIdFunc func(ctx context.Context, id int) (*domain.Customer, error)
}

func (m *MockCustomerRepo) GetById(ctx context.Context, id int) (*domain.Customer, error) {
	return m.GetByIdFunc(ctx, id)
}
