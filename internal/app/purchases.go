package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cinetick/ticketing/api"
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

// CreatePurchaseHandler transitions tickets from open to sold. The customer
// is charged first; the status flip runs as a guarded update inside one
// transaction, so a concurrent purchase of any of the same tickets makes this
// one fail atomically, in which case the charge is refunded best-effort.
func (app *Application) CreatePurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePurchaseRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	customer, err := app.customerRepo.GetById(r.Context(), req.CustomerId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, domain.ErrCustomerNotFound)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	tickets, err := app.ticketRepo.GetByIds(r.Context(), req.TicketIds)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Unknown and unavailable tickets are the same error class, so the caller
	// cannot probe which ids exist.
	if len(tickets) != len(req.TicketIds) {
		app.editConflictResponse(w, r, domain.ErrTicketUnavailable)
		return
	}

	amount := decimal.Zero
	for _, ticket := range tickets {
		if ticket.Status != domain.TicketStatusOpen {
			app.editConflictResponse(w, r, domain.ErrTicketUnavailable)
			return
		}

		amount = amount.Add(ticket.Price)
	}

	description := fmt.Sprintf("%d movie ticket(s)", len(tickets))

	providerRef, err := app.paymentProvider.Charge(r.Context(), customer, amount, description)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	payment := &domain.Payment{
		CustomerID:  customer.ID,
		Amount:      amount,
		Currency:    app.config.Stripe.Currency,
		Status:      domain.PaymentStatusCompleted,
		ProviderRef: providerRef,
		TicketIDs:   req.TicketIds,
	}

	err = app.paymentRepo.CreatePurchase(r.Context(), payment, req.TicketIds)
	if err != nil {
		app.refundInBackground(providerRef)

		if errors.Is(err, domain.ErrTicketUnavailable) {
			app.editConflictResponse(w, r, err)
			return
		}

		if errors.Is(err, domain.ErrCustomerNotFound) {
			app.notFoundResponseWithErr(w, r, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	app.sendReceipt(customer, payment, tickets)

	resp := api.PaymentResponse{
		Id:          payment.ID,
		CustomerId:  payment.CustomerID,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Status:      string(payment.Status),
		ProviderRef: payment.ProviderRef,
		TicketIds:   payment.TicketIDs,
		CreatedAt:   payment.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) refundInBackground(providerRef string) {
	app.background(func() {
		err := app.paymentProvider.Refund(context.Background(), providerRef)
		if err != nil {
			app.logger.Error("failed to refund charge", "provider_ref", providerRef, "error", err)
		}
	})
}

func (app *Application) sendReceipt(customer *domain.Customer, payment *domain.Payment, tickets []domain.Ticket) {
	data := map[string]any{
		"FirstName": customer.FirstName,
		"Amount":    payment.Amount,
		"Currency":  payment.Currency,
		"PaymentID": payment.ID,
		"Tickets":   tickets,
	}

	app.background(func() {
		err := app.mailer.Send(customer.Email, "receipt.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send receipt email", "payment_id", payment.ID, "error", err)
		}
	})
}
