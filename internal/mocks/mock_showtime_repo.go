package mocks

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockShowtimeRepo struct {
	domain.ShowtimeRepository
	GetByIdFunc                func(ctx context.Context, id int) (*domain.Showtime, error)
	FindFunc                   func(ctx context.Context, filter domain.ShowtimeFilter) ([]domain.Showtime, error)
	GetIntervalsByTheatersFunc func(ctx context.Context, theaterIDs []int) (map[int][]domain.Interval, error)
	CreateBatchFunc            func(ctx context.Context, showtimes []domain.Showtime) ([]domain.Showtime, error)
}

func (m *MockShowtimeRepo) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockShowtimeRepo) Find(ctx context.Context, filter domain.ShowtimeFilter) ([]domain.Showtime, error) {
	return m.FindFunc(ctx, filter)
}

func (m *MockShowtimeRepo) GetIntervalsByTheaters(ctx context.Context, theaterIDs []int) (map[int][]domain.Interval, error) {
	return m.GetIntervalsByTheatersFunc(ctx, theaterIDs)
}

func (m *MockShowtimeRepo) CreateBatch(ctx context.Context, showtimes []domain.Showtime) ([]domain.Showtime, error) {
	return m.CreateBatchFunc(ctx, showtimes)
}
