package mocks

import (
	"context"
	"time"

	"github.com/cinetick/ticketing/internal/domain"
)

type MockMovieRepo struct {
	domain.MovieRepository
	GetByIdFunc              func(ctx context.Context, id int) (*domain.Movie, error)
	ExistsFunc               func(ctx context.Context, id int) (bool, error)
	GetNowShowingFunc        func(ctx context.Context, now time.Time) ([]domain.Movie, error)
	GetWatchedByCustomerFunc func(ctx context.Context, customerID int) ([]domain.Movie, error)
}

func (m *MockMovieRepo) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockMovieRepo) Exists(ctx context.Context, id int) (bool, error) {
	return m.ExistsFunc(ctx, id)
}

func (m *MockMovieRepo) GetNowShowing(ctx context.Context, now time.Time) ([]domain.Movie, error) {
	return m.GetNowShowingFunc(ctx, now)
}

func (m *MockMovieRepo) GetWatchedByCustomer(ctx context.Context, customerID int) ([]domain.Movie, error) {
	return m.GetWatchedByCustomerFunc(ctx, customerID)
}
