package payment

import (
	"context"
	"sync"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

// MockPaymentProvider records charges and refunds in memory.
type MockPaymentProvider struct {
	ChargeFunc func(ctx context.Context, customer *domain.Customer, amount decimal.Decimal, description string) (string, error)
	RefundFunc func(ctx context.Context, providerRef string) error

	mu       sync.Mutex
	charges  []ChargeRecord
	refunded []string
}

type ChargeRecord struct {
	CustomerID  int
	Amount      decimal.Decimal
	Description string
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) Charge(
	ctx context.Context,
	customer *domain.Customer,
	amount decimal.Decimal,
	description string) (string, error) {

	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, customer, amount, description)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.charges = append(m.charges, ChargeRecord{
		CustomerID:  customer.ID,
		Amount:      amount,
		Description: description,
	})

	return "pi_mock_1", nil
}

func (m *MockPaymentProvider) Refund(ctx context.Context, providerRef string) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, providerRef)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.refunded = append(m.refunded, providerRef)

	return nil
}

// Charges returns a copy of all recorded charges.
func (m *MockPaymentProvider) Charges() []ChargeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	charges := make([]ChargeRecord, len(m.charges))
	copy(charges, m.charges)

	return charges
}

// Refunded returns a copy of all refunded provider references.
func (m *MockPaymentProvider) Refunded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	refunded := make([]string, len(m.refunded))
	copy(refunded, m.refunded)

	return refunded
}
