package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cinetick/ticketing/api"
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/cinetick/ticketing/internal/pipeline"
)

// CreateShowtimesHandler runs the synchronous half of batch scheduling. The
// response carries the batch id and the rejected candidates; persistence and
// ticket materialization complete asynchronously and are observable on the
// event streams.
func (app *Application) CreateShowtimesHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreateShowtimesRequest

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

	cmd := pipeline.CreateShowtimesCommand{
		MovieID:    req.MovieId,
		TheaterIDs: req.TheaterIds,
		StartTimes: req.StartTimes,
		Duration:   time.Duration(req.DurationMinutes) * time.Minute,
		BasePrice:  req.BasePrice,
	}

	receipt, err := app.scheduler.CreateShowtimes(r.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMovieNotFound), errors.Is(err, domain.ErrTheaterNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrInvalidInterval):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	conflicts := receipt.Conflicting
	if conflicts == nil {
		conflicts = []domain.ScheduleCandidate{}
	}

	resp := api.CreateShowtimesResponse{
		BatchId:   receipt.BatchID,
		Conflicts: conflicts,
	}

	err = app.writeJSON(w, http.StatusAccepted, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowtimeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimeRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, showtime, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowtimesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := toShowtimeFilter(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtimes, err := app.showtimeRepo.Find(r.Context(), filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeListResponse{Showtimes: showtimes}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetShowtimeSalesHandler aggregates per-showtime ticket counts for the ids
// given in the query, e.g. /showtimes/sales?ids=1,2,3.
func (app *Application) GetShowtimeSalesHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sales, err := app.ticketRepo.GetSalesByShowtimes(r.Context(), ids)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeSalesResponse{Sales: make([]api.ShowtimeSales, len(sales))}
	for i, s := range sales {
		resp.Sales[i] = api.ShowtimeSales{
			ShowtimeId: s.ShowtimeID,
			Total:      s.Total,
			Sold:       s.Sold,
			Available:  s.Available,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toShowtimeFilter(r *http.Request) (domain.ShowtimeFilter, error) {
	var filter domain.ShowtimeFilter
	query := r.URL.Query()

	for name, dst := range map[string]*int{
		"movieId":   &filter.MovieID,
		"theaterId": &filter.TheaterID,
	} {
		if raw := query.Get(name); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value < 1 {
				return filter, fmt.Errorf("invalid %s parameter", name)
			}
			*dst = value
		}
	}

	filter.BatchID = query.Get("batchId")

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("date must be in YYYY-MM-DD format")
		}
		filter.Date = date
	}

	return filter, nil
}

func parseIDList(raw string) ([]int, error) {
	if raw == "" {
		return nil, errors.New("ids parameter is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))

	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id < 1 {
			return nil, errors.New("ids must be a comma-separated list of positive integers")
		}

		ids = append(ids, id)
	}

	return ids, nil
}
