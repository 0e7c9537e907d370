package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentProvider interface {
	// Charge collects the amount from the customer and returns the provider's
	// reference for the transaction.
	Charge(ctx context.Context, customer *Customer, amount decimal.Decimal, description string) (string, error)

	// Refund reverses a previous charge. Used when the ticket transition
	// loses the race after the customer was already charged.
	Refund(ctx context.Context, providerRef string) error
}
