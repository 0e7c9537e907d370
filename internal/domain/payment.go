package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID          int
	CustomerID  int
	Amount      decimal.Decimal
	Currency    string
	Status      PaymentStatus
	ProviderRef string
	TicketIDs   []int
	CreatedAt   time.Time
}

type PaymentRepository interface {
	// CreatePurchase transitions every listed ticket from open to sold and
	// records the payment in one transaction. When any ticket is missing or
	// not open it returns ErrTicketUnavailable and changes nothing.
	CreatePurchase(ctx context.Context, payment *Payment, ticketIDs []int) error

	GetById(ctx context.Context, id int) (*Payment, error)
}
