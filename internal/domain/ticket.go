package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusReserved TicketStatus = "reserved"
	TicketStatusSold     TicketStatus = "sold"
)

type Ticket struct {
	ID         int             `json:"id"`
	ShowtimeID int             `json:"showtimeId"`
	TheaterID  int             `json:"theaterId"`
	MovieID    int             `json:"movieId"`
	BatchID    string          `json:"batchId"`
	Seat       Seat            `json:"seat"`
	Status     TicketStatus    `json:"status"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type TicketSales struct {
	ShowtimeID int
	Total      int
	Sold       int
	Available  int
}

type TicketFilter struct {
	BatchID    string
	ShowtimeID int
}

type TicketRepository interface {
	// CreateBatch bulk-inserts tickets keyed on (showtime, seat) so that a
	// retried materialization inserts nothing for seats that already have a
	// ticket. It returns the number of rows actually inserted.
	CreateBatch(ctx context.Context, tickets []Ticket) (int, error)

	GetByIds(ctx context.Context, ids []int) ([]Ticket, error)
	Find(ctx context.Context, filter TicketFilter) ([]Ticket, error)
	CountByBatch(ctx context.Context, batchID string) (int, error)
	GetSalesByShowtimes(ctx context.Context, showtimeIDs []int) ([]TicketSales, error)
}
