package mocks

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockTheaterRepo struct {
	domain.TheaterRepository
	GetByIdFunc  func(ctx context.Context, id int) (*domain.Theater, error)
	ExistAllFunc func(ctx context.Context, ids []int) (bool, error)
}

func (m *MockTheaterRepo) GetById(ctx context.Context, id int) (*domain.Theater, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockTheaterRepo) ExistAll(ctx context.Context, ids []int) (bool, error) {
	return m.ExistAllFunc(ctx, ids)
}
