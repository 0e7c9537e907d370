package domain

import "context"

type Theater struct {
	ID        int
	Name      string
	Latitude  float64
	Longitude float64
	SeatMap   SeatMap
}

type TheaterRepository interface {
	GetById(ctx context.Context, id int) (*Theater, error)
	ExistAll(ctx context.Context, ids []int) (bool, error)
}
