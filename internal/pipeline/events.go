package pipeline

import "github.com/cinetick/ticketing/internal/domain"

// Event names published on the bus. Clients correlate them to their request
// through the batch id carried on every event.
const (
	EventShowtimesCreated = "showtimes.created"
	EventShowtimesFailed  = "showtimes.failed"
	EventTicketsCreated   = "tickets.created"
	EventTicketsFailed    = "tickets.failed"
)

type ShowtimesCreatedPayload struct {
	Showtimes []domain.Showtime `json:"showtimes"`
}

type TicketsCreatedPayload struct {
	TicketCount int `json:"ticketCount"`
}

type BatchFailedPayload struct {
	Reason string `json:"reason"`
}
