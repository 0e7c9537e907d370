package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID          int
	Title       string
	Description string
	Genres      []string
	Language    string
	ReleaseDate time.Time
	Duration    int
	PosterUrl   string
}

type MovieRepository interface {
	GetById(ctx context.Context, id int) (*Movie, error)
	Exists(ctx context.Context, id int) (bool, error)

	// GetNowShowing returns movies with at least one upcoming showtime,
	// ordered by id for a stable recommendation input.
	GetNowShowing(ctx context.Context, now time.Time) ([]Movie, error)

	// GetWatchedByCustomer resolves the customer's purchased tickets to the
	// distinct set of movies they bought seats for.
	GetWatchedByCustomer(ctx context.Context, customerID int) ([]Movie, error)
}
