package mocks

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockTicketRepo struct {
	domain.TicketRepository
	CreateBatchFunc         func(ctx context.Context, tickets []domain.Ticket) (int, error)
	GetByIdsFunc            func(ctx context.Context, ids []int) ([]domain.Ticket, error)
	FindFunc                func(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	CountByBatchFunc        func(ctx context.Context, batchID string) (int, error)
	GetSalesByShowtimesFunc func(ctx context.Context, showtimeIDs []int) ([]domain.TicketSales, error)
}

func (m *MockTicketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) (int, error) {
	return m.CreateBatchFunc(ctx, tickets)
}

func (m *MockTicketRepo) GetByIds(ctx context.Context, ids []int) ([]domain.Ticket, error) {
	return m.GetByIdsFunc(ctx, ids)
}

func (m *MockTicketRepo) Find(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	return m.FindFunc(ctx, filter)
}

func (m *MockTicketRepo) CountByBatch(ctx context.Context, batchID string) (int, error) {
	return m.CountByBatchFunc(ctx, batchID)
}

func (m *MockTicketRepo) GetSalesByShowtimes(ctx context.Context, showtimeIDs []int) ([]domain.TicketSales, error) {
	return m.GetSalesByShowtimesFunc(ctx, showtimeIDs)
}
