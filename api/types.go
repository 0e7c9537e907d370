// Package api holds the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type CreateShowtimesRequest struct {
	MovieId         int             `json:"movieId" validate:"required,gt=0"`
	TheaterIds      []int           `json:"theaterIds" validate:"required,min=1,dive,gt=0"`
	StartTimes      []time.Time     `json:"startTimes" validate:"required,min=1"`
	DurationMinutes int             `json:"durationMinutes" validate:"required,gt=0"`
	BasePrice       decimal.Decimal `json:"basePrice" validate:"positive_price"`
}

type CreateShowtimesResponse struct {
	BatchId   string                     `json:"batchId"`
	Conflicts []domain.ScheduleCandidate `json:"conflicts"`
}

type ShowtimeListResponse struct {
	Showtimes []domain.Showtime `json:"showtimes"`
}

type ShowtimeSales struct {
	ShowtimeId int `json:"showtimeId"`
	Total      int `json:"total"`
	Sold       int `json:"sold"`
	Available  int `json:"available"`
}

type ShowtimeSalesResponse struct {
	Sales []ShowtimeSales `json:"sales"`
}

type TicketListResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type CreatePurchaseRequest struct {
	CustomerId int   `json:"customerId" validate:"required,gt=0"`
	TicketIds  []int `json:"ticketIds" validate:"required,min=1,dive,gt=0"`
}

type PaymentResponse struct {
	Id          int             `json:"id"`
	CustomerId  int             `json:"customerId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ProviderRef string          `json:"providerRef"`
	TicketIds   []int           `json:"ticketIds"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type RecommendedMovie struct {
	Id     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

type RecommendationsResponse struct {
	Movies []RecommendedMovie `json:"movies"`
}
