package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinetick/ticketing/internal/bus"
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/cinetick/ticketing/internal/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var testTheater = &domain.Theater{
	ID:   1,
	Name: "T1",
	SeatMap: domain.SeatMap{
		{Name: "A", Rows: []domain.SeatRow{{Name: "1", Seats: "OOXO"}}},
	},
}

func testShowtime(id int) domain.Showtime {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	return domain.Showtime{
		ID:        id,
		MovieID:   7,
		TheaterID: 1,
		BatchID:   "batch-1",
		StartTime: day.Add(12 * time.Hour),
		EndTime:   day.Add(14 * time.Hour),
		BasePrice: decimal.NewFromInt(10),
	}
}

func newTestMaterializer(theaters *mocks.MockTheaterRepo, tickets *mocks.MockTicketRepo) (*Materializer, *bus.Bus) {
	b := bus.New()
	m := NewMaterializer(b, &mocks.MockLocker{}, theaters, tickets, testLogger(), fastOptions())

	return m, b
}

func theaterLookup(t *testing.T) *mocks.MockTheaterRepo {
	t.Helper()

	return &mocks.MockTheaterRepo{
		GetByIdFunc: func(ctx context.Context, id int) (*domain.Theater, error) {
			if id != testTheater.ID {
				return nil, domain.ErrRecordNotFound
			}
			return testTheater, nil
		},
	}
}

func TestMaterializerCreatesOneTicketPerSeat(t *testing.T) {
	var created []domain.Ticket

	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			created = append(created, batch...)
			return len(batch), nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			return len(created), nil
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	sub := b.Subscribe(4, EventTicketsCreated, EventTicketsFailed)

	m.handle(context.Background(), bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
	})

	// T1 has 3 sellable seats, so exactly 3 open tickets materialize.
	wantSeats := []domain.Seat{
		{Block: "A", Row: "1", Number: 1},
		{Block: "A", Row: "1", Number: 2},
		{Block: "A", Row: "1", Number: 4},
	}

	if len(created) != len(wantSeats) {
		t.Fatalf("created %d tickets, want %d", len(created), len(wantSeats))
	}

	gotSeats := make([]domain.Seat, len(created))
	for i, ticket := range created {
		gotSeats[i] = ticket.Seat

		if ticket.Status != domain.TicketStatusOpen {
			t.Errorf("ticket %d status = %q, want open", i, ticket.Status)
		}
		if ticket.ShowtimeID != 11 || ticket.TheaterID != 1 || ticket.MovieID != 7 {
			t.Errorf("ticket %d has wrong references: %+v", i, ticket)
		}
		if ticket.BatchID != "batch-1" {
			t.Errorf("ticket %d batch id = %q, want batch-1", i, ticket.BatchID)
		}
	}

	if diff := cmp.Diff(wantSeats, gotSeats); diff != "" {
		t.Errorf("seat tuples mismatch (-want +got):\n%s", diff)
	}

	e := <-sub.C
	if e.Name != EventTicketsCreated {
		t.Fatalf("event = %q, want %q", e.Name, EventTicketsCreated)
	}

	payload, ok := e.Payload.(TicketsCreatedPayload)
	if !ok {
		t.Fatalf("event payload type = %T", e.Payload)
	}
	if payload.TicketCount != 3 {
		t.Errorf("ticket count = %d, want 3", payload.TicketCount)
	}
}

func TestMaterializerIsIdempotentAcrossRedelivery(t *testing.T) {
	writes := 0

	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			writes++
			return len(batch), nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			return 3, nil
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	event := bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
	}

	m.handle(context.Background(), event)
	m.handle(context.Background(), event)

	if writes != 1 {
		t.Errorf("bulk write ran %d times, want 1", writes)
	}
}

func TestMaterializerPublishesFailureAfterRetries(t *testing.T) {
	attempts := 0

	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			attempts++
			return 0, errors.New("storage unavailable")
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	sub := b.Subscribe(4, EventTicketsFailed)

	m.handle(context.Background(), bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	e := <-sub.C
	failed, ok := e.Payload.(BatchFailedPayload)
	if !ok {
		t.Fatalf("event payload type = %T", e.Payload)
	}
	if failed.Reason == "" {
		t.Error("failure event has empty reason")
	}
}

func TestMaterializerReportsCountMismatch(t *testing.T) {
	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			return len(batch), nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			return 2, nil // one ticket short of the 3 expected
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	sub := b.Subscribe(4, EventTicketsCreated, EventTicketsFailed)

	m.handle(context.Background(), bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
	})

	e := <-sub.C
	if e.Name != EventTicketsFailed {
		t.Errorf("event = %q, want %q", e.Name, EventTicketsFailed)
	}
}

func TestMaterializerEmptyBatchCompletesImmediately(t *testing.T) {
	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			t.Error("CreateBatch called for empty batch")
			return 0, nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			return 0, nil
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	sub := b.Subscribe(4, EventTicketsCreated)

	m.handle(context.Background(), bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{}},
	})

	e := <-sub.C
	payload, ok := e.Payload.(TicketsCreatedPayload)
	if !ok {
		t.Fatalf("event payload type = %T", e.Payload)
	}
	if payload.TicketCount != 0 {
		t.Errorf("ticket count = %d, want 0", payload.TicketCount)
	}
}

func TestMaterializerRunResubscribesAfterDrop(t *testing.T) {
	release := make(chan struct{})
	acquires := 0

	locks := &mocks.MockLocker{
		AcquireFunc: func(ctx context.Context, key string, ttl time.Duration) (bool, error) {
			acquires++
			if acquires == 1 {
				<-release
			}
			return true, nil
		},
	}

	processed := make(chan string, 16)
	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			return len(batch), nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			processed <- batchID
			return 3, nil
		},
	}

	b := bus.New()
	defer b.Close()

	opts := fastOptions()
	opts.BusBuffer = 1

	m := NewMaterializer(b, locks, theaterLookup(t), tickets, testLogger(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = m.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)

	event := func(batch string) bus.Event {
		return bus.Event{
			Name:    EventShowtimesCreated,
			BatchID: batch,
			Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
		}
	}

	// The first event blocks in the handler, the second fills the single-slot
	// buffer, the third overflows it and the bus drops the subscription.
	b.Publish(event("batch-1"))
	time.Sleep(20 * time.Millisecond)
	b.Publish(event("batch-2"))
	b.Publish(event("batch-3"))

	close(release)

	// The stage must come back on its own and pick up new batches.
	deadline := time.After(5 * time.Second)
	for {
		b.Publish(event("batch-4"))

		select {
		case id := <-processed:
			if id == "batch-4" {
				return
			}
		case <-deadline:
			t.Fatal("materializer did not resubscribe after its subscription was dropped")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func TestMaterializerRunConsumesBusEvents(t *testing.T) {
	done := make(chan struct{})

	tickets := &mocks.MockTicketRepo{
		CreateBatchFunc: func(ctx context.Context, batch []domain.Ticket) (int, error) {
			return len(batch), nil
		},
		CountByBatchFunc: func(ctx context.Context, batchID string) (int, error) {
			close(done)
			return 3, nil
		},
	}

	m, b := newTestMaterializer(theaterLookup(t), tickets)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = m.Run(ctx) }()

	// Give the run loop a moment to subscribe; there is no replay.
	time.Sleep(20 * time.Millisecond)

	b.Publish(bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: "batch-1",
		Payload: ShowtimesCreatedPayload{Showtimes: []domain.Showtime{testShowtime(11)}},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("materializer did not process the published batch")
	}
}
