package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinetick/ticketing/api"
	"github.com/cinetick/ticketing/internal/domain"
)

// GetTicketsHandler is the polling fallback for clients that missed the
// tickets.created event: it lists the inventory by batch or showtime.
func (app *Application) GetTicketsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.TicketFilter{
		BatchID: query.Get("batchId"),
	}

	if raw := query.Get("showtimeId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid showtimeId parameter"))
			return
		}

		filter.ShowtimeID = id
	}

	if filter.BatchID == "" && filter.ShowtimeID == 0 {
		app.badRequestResponse(w, r, errors.New("either batchId or showtimeId must be provided"))
		return
	}

	tickets, err := app.ticketRepo.Find(r.Context(), filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TicketListResponse{Tickets: tickets}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
