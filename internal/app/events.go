package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetick/ticketing/internal/pipeline"
)

const sseBuffer = 64

// ShowtimeEventsHandler streams batch scheduling outcomes as server-sent
// events. Subscriptions start at the time of connection; there is no replay.
func (app *Application) ShowtimeEventsHandler(w http.ResponseWriter, r *http.Request) {
	app.streamEvents(w, r, pipeline.EventShowtimesCreated, pipeline.EventShowtimesFailed)
}

// TicketEventsHandler streams ticket materialization outcomes.
func (app *Application) TicketEventsHandler(w http.ResponseWriter, r *http.Request) {
	app.streamEvents(w, r, pipeline.EventTicketsCreated, pipeline.EventTicketsFailed)
}

func (app *Application) streamEvents(w http.ResponseWriter, r *http.Request, names ...string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverErrorResponse(w, r, errors.New("streaming not supported"))
		return
	}

	sub := app.bus.Subscribe(sseBuffer, names...)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()

		case e, ok := <-sub.C:
			// A closed channel means the subscription was dropped for falling
			// behind, or the bus shut down. Either way the client reconnects.
			if !ok {
				return
			}

			data, err := json.Marshal(e)
			if err != nil {
				app.logger.Error("failed to marshal event", "event", e.Name, "error", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
			flusher.Flush()
		}
	}
}
