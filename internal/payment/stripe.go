package payment

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

type StripePaymentProvider struct {
	currency      string
	paymentMethod string
}

func NewStripePaymentProvider(currency, paymentMethod string) *StripePaymentProvider {
	return &StripePaymentProvider{
		currency:      currency,
		paymentMethod: paymentMethod,
	}
}

func (s *StripePaymentProvider) Charge(
	ctx context.Context,
	customer *domain.Customer,
	amount decimal.Decimal,
	description string) (string, error) {

	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(s.currency),
		PaymentMethod: stripe.String(s.paymentMethod),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(description),
		ReceiptEmail:  stripe.String(customer.Email),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}

	return intent.ID, nil
}

func (s *StripePaymentProvider) Refund(ctx context.Context, providerRef string) error {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(providerRef),
	}

	_, err := refund.New(params)

	return err
}
