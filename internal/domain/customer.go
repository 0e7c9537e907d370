package domain

import (
	"context"
	"time"
)

type Customer struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

type CustomerRepository interface {
	GetById(ctx context.Context, id int) (*Customer, error)
}
