package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Showtime struct {
	ID        int             `json:"id"`
	MovieID   int             `json:"movieId"`
	TheaterID int             `json:"theaterId"`
	BatchID   string          `json:"batchId"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	BasePrice decimal.Decimal `json:"basePrice"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ShowtimeFilter struct {
	MovieID   int
	TheaterID int
	BatchID   string
	Date      time.Time
}

type ShowtimeRepository interface {
	GetById(ctx context.Context, id int) (*Showtime, error)
	Find(ctx context.Context, filter ShowtimeFilter) ([]Showtime, error)

	// GetIntervalsByTheaters returns the persisted [start, end) intervals per
	// theater, the input to conflict detection.
	GetIntervalsByTheaters(ctx context.Context, theaterIDs []int) (map[int][]Interval, error)

	// CreateBatch persists all showtimes in a single transaction and returns
	// them with their assigned ids. A batch is never partially persisted.
	CreateBatch(ctx context.Context, showtimes []Showtime) ([]Showtime, error)
}
