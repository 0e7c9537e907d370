package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinetick/ticketing/api"
	"github.com/cinetick/ticketing/internal/domain"
)

// GetRecommendationsHandler ranks the currently showing movies against the
// customer's purchase history by shared genres.
func (app *Application) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	customerID, err := app.readIDParam(r, "customerId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = app.customerRepo.GetById(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, domain.ErrCustomerNotFound)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	watched, err := app.movieRepo.GetWatchedByCustomer(r.Context(), customerID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	showing, err := app.movieRepo.GetNowShowing(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	ranked := domain.RecommendMovies(watched, showing)

	resp := api.RecommendationsResponse{Movies: make([]api.RecommendedMovie, len(ranked))}
	for i, movie := range ranked {
		resp.Movies[i] = api.RecommendedMovie{
			Id:     movie.ID,
			Title:  movie.Title,
			Genres: movie.Genres,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
