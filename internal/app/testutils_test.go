package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinetick/ticketing/api"
	"github.com/cinetick/ticketing/internal/bus"
	"github.com/cinetick/ticketing/internal/mailer"
	"github.com/cinetick/ticketing/internal/mocks"
	"github.com/cinetick/ticketing/internal/pipeline"
	"github.com/cinetick/ticketing/internal/validator"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		validator: validator.NewValidator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		bus:       bus.New(),
		mailer:    mailer.NewMockMailer(),
	}
	app.config.Env = "test"
	app.config.Stripe.Currency = "usd"

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func withScheduler(
	q *mocks.MockQueue,
	movies *mocks.MockMovieRepo,
	theaters *mocks.MockTheaterRepo,
	showtimes *mocks.MockShowtimeRepo,
) func(*Application) {
	return func(app *Application) {
		opts := pipeline.Options{Workers: 1, MaxRetries: 1, LockTTL: time.Minute}
		app.scheduler = pipeline.NewScheduler(
			q, app.bus, &mocks.MockLocker{}, movies, theaters, showtimes, app.logger, opts,
		)
	}
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
