package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinetick/ticketing/internal/bus"
	"github.com/cinetick/ticketing/internal/domain"
)

const resubscribeDelay = time.Second

// Materializer turns every accepted showtime of a batch into a full per-seat
// ticket inventory. It subscribes to showtimes.created, expands each
// showtime's theater seat map and bulk-persists one open ticket per sellable
// seat. The bulk write is keyed on (showtime, seat), so a redelivered batch
// inserts nothing and materialization stays idempotent.
type Materializer struct {
	bus      *bus.Bus
	locks    BatchLocker
	theaters domain.TheaterRepository
	tickets  domain.TicketRepository
	logger   *slog.Logger
	opts     Options
}

func NewMaterializer(
	b *bus.Bus,
	locks BatchLocker,
	theaters domain.TheaterRepository,
	tickets domain.TicketRepository,
	logger *slog.Logger,
	opts Options,
) *Materializer {
	return &Materializer{
		bus:      b,
		locks:    locks,
		theaters: theaters,
		tickets:  tickets,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

// Run consumes showtimes.created events until ctx is cancelled. A subscription
// dropped for falling behind is reopened after a short pause, so a burst that
// overflows the buffer loses the missed events but never kills the stage.
func (m *Materializer) Run(ctx context.Context) error {
	for {
		if err := m.consume(ctx); err != nil {
			return err
		}

		m.logger.Warn("materializer subscription dropped, resubscribing")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(resubscribeDelay):
		}
	}
}

func (m *Materializer) consume(ctx context.Context) error {
	sub := m.bus.Subscribe(m.opts.BusBuffer, EventShowtimesCreated)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}

			m.handle(ctx, e)
		}
	}
}

func (m *Materializer) handle(ctx context.Context, e bus.Event) {
	payload, ok := e.Payload.(ShowtimesCreatedPayload)
	if !ok {
		m.logger.Error("unexpected payload on showtimes.created", "batch_id", e.BatchID)
		return
	}

	lockKey := fmt.Sprintf("batch:%s:tickets", e.BatchID)

	acquired, err := m.locks.Acquire(ctx, lockKey, m.opts.LockTTL)
	if err != nil {
		m.logger.Error("failed to acquire materialization lock", "batch_id", e.BatchID, "error", err)
		m.publishFailed(e.BatchID, err)
		return
	}
	if !acquired {
		m.logger.Info("skipping already materialized batch", "batch_id", e.BatchID)
		return
	}

	expected := 0

	err = retry(ctx, m.opts.MaxRetries, m.logger, "tickets.materialize", func() error {
		var opErr error
		expected, opErr = m.materialize(ctx, e.BatchID, payload.Showtimes)
		return opErr
	})

	if err != nil {
		m.logger.Error("ticket materialization failed", "batch_id", e.BatchID, "error", err)

		if releaseErr := m.locks.Release(ctx, lockKey); releaseErr != nil {
			m.logger.Error("failed to release batch lock", "key", lockKey, "error", releaseErr)
		}

		m.publishFailed(e.BatchID, err)
		return
	}

	count, err := m.tickets.CountByBatch(ctx, e.BatchID)
	if err != nil {
		m.logger.Error("failed to verify ticket count", "batch_id", e.BatchID, "error", err)
		m.publishFailed(e.BatchID, err)
		return
	}

	if count != expected {
		err := fmt.Errorf("materialized %d tickets, expected %d", count, expected)
		m.logger.Error("ticket inventory invariant violated", "batch_id", e.BatchID, "error", err)
		m.publishFailed(e.BatchID, err)
		return
	}

	m.logger.Info("ticket inventory materialized", "batch_id", e.BatchID, "tickets", count)

	m.bus.Publish(bus.Event{
		Name:    EventTicketsCreated,
		BatchID: e.BatchID,
		Payload: TicketsCreatedPayload{TicketCount: count},
	})
}

// materialize expands every showtime's seat map and bulk-persists the batch's
// tickets in one write. It returns the expected ticket count for the batch.
func (m *Materializer) materialize(ctx context.Context, batchID string, showtimes []domain.Showtime) (int, error) {
	theaterCache := make(map[int]*domain.Theater)
	batch := make([]domain.Ticket, 0)

	for _, showtime := range showtimes {
		theater, ok := theaterCache[showtime.TheaterID]
		if !ok {
			var err error

			theater, err = m.theaters.GetById(ctx, showtime.TheaterID)
			if err != nil {
				return 0, fmt.Errorf("load theater %d: %w", showtime.TheaterID, err)
			}

			theaterCache[showtime.TheaterID] = theater
		}

		for seat := range theater.SeatMap.Seats() {
			batch = append(batch, domain.Ticket{
				ShowtimeID: showtime.ID,
				TheaterID:  showtime.TheaterID,
				MovieID:    showtime.MovieID,
				BatchID:    batchID,
				Seat:       seat,
				Status:     domain.TicketStatusOpen,
				Price:      showtime.BasePrice,
			})
		}
	}

	if len(batch) == 0 {
		return 0, nil
	}

	_, err := m.tickets.CreateBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("persist tickets: %w", err)
	}

	return len(batch), nil
}

func (m *Materializer) publishFailed(batchID string, err error) {
	m.bus.Publish(bus.Event{
		Name:    EventTicketsFailed,
		BatchID: batchID,
		Payload: BatchFailedPayload{Reason: err.Error()},
	})
}
