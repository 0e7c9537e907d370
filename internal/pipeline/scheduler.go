package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinetick/ticketing/internal/bus"
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/cinetick/ticketing/internal/queue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options tunes the asynchronous stages of the pipeline.
type Options struct {
	Workers    int
	MaxRetries uint64
	LockTTL    time.Duration
	BusBuffer  int
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 2
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 5
	}
	if o.LockTTL == 0 {
		o.LockTTL = 24 * time.Hour
	}
	if o.BusBuffer < 1 {
		o.BusBuffer = 256
	}

	return o
}

// Scheduler validates showtime creation requests, detects interval conflicts,
// and hands accepted candidates to the durable queue. A worker side of the
// same type drains the queue, persists each batch's showtimes all-or-nothing
// and publishes the batch outcome on the bus.
type Scheduler struct {
	queue     queue.Queue
	bus       *bus.Bus
	locks     BatchLocker
	movies    domain.MovieRepository
	theaters  domain.TheaterRepository
	showtimes domain.ShowtimeRepository
	logger    *slog.Logger
	opts      Options
}

func NewScheduler(
	q queue.Queue,
	b *bus.Bus,
	locks BatchLocker,
	movies domain.MovieRepository,
	theaters domain.TheaterRepository,
	showtimes domain.ShowtimeRepository,
	logger *slog.Logger,
	opts Options,
) *Scheduler {
	return &Scheduler{
		queue:     q,
		bus:       b,
		locks:     locks,
		movies:    movies,
		theaters:  theaters,
		showtimes: showtimes,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

type CreateShowtimesCommand struct {
	MovieID    int
	TheaterIDs []int
	StartTimes []time.Time
	Duration   time.Duration
	BasePrice  decimal.Decimal
}

type BatchReceipt struct {
	BatchID     string
	Conflicting []domain.ScheduleCandidate
}

// CreateShowtimes runs the synchronous half of batch creation: existence
// checks, conflict detection and enqueueing. It returns as soon as the job is
// durable; persistence happens asynchronously and is reported through the
// bus. Conflicting candidates are returned to the caller immediately so it
// can decide whether to reschedule them.
func (s *Scheduler) CreateShowtimes(ctx context.Context, cmd CreateShowtimesCommand) (*BatchReceipt, error) {
	exists, err := s.movies.Exists(ctx, cmd.MovieID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMovieNotFound
	}

	allExist, err := s.theaters.ExistAll(ctx, cmd.TheaterIDs)
	if err != nil {
		return nil, err
	}
	if !allExist {
		return nil, domain.ErrTheaterNotFound
	}

	candidates := make([]domain.ScheduleCandidate, 0, len(cmd.TheaterIDs)*len(cmd.StartTimes))
	for _, theaterID := range cmd.TheaterIDs {
		for _, start := range cmd.StartTimes {
			candidates = append(candidates, domain.ScheduleCandidate{
				TheaterID: theaterID,
				StartTime: start,
				EndTime:   start.Add(cmd.Duration),
			})
		}
	}

	existing, err := s.showtimes.GetIntervalsByTheaters(ctx, cmd.TheaterIDs)
	if err != nil {
		return nil, err
	}

	plan, err := domain.PlanSchedule(candidates, existing)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()

	job := PersistShowtimesJob{
		BatchID:   batchID,
		MovieID:   cmd.MovieID,
		BasePrice: cmd.BasePrice,
		Accepted:  plan.Accepted,
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	err = s.queue.Enqueue(ctx, JobPersistShowtimes, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("showtime batch queued",
		"batch_id", batchID,
		"movie_id", cmd.MovieID,
		"accepted", len(plan.Accepted),
		"conflicting", len(plan.Conflicting),
	)

	return &BatchReceipt{BatchID: batchID, Conflicting: plan.Conflicting}, nil
}

// Run drains the persistence queue until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	return s.queue.Consume(ctx, JobPersistShowtimes, s.opts.Workers, s.handlePersistJob)
}

func (s *Scheduler) handlePersistJob(ctx context.Context, payload []byte) error {
	var job PersistShowtimesJob

	err := json.Unmarshal(payload, &job)
	if err != nil {
		return fmt.Errorf("unmarshal persist job: %w", err)
	}

	lockKey := fmt.Sprintf("batch:%s:showtimes", job.BatchID)

	// A lock store outage must not drop the batch on the floor: retry the
	// acquisition and surface exhaustion as a batch failure event, like any
	// other storage failure.
	var acquired bool

	err = retry(ctx, s.opts.MaxRetries, s.logger, "showtimes.lock", func() error {
		var opErr error
		acquired, opErr = s.locks.Acquire(ctx, lockKey, s.opts.LockTTL)
		return opErr
	})

	if err != nil {
		s.logger.Error("failed to acquire batch lock", "batch_id", job.BatchID, "error", err)

		s.bus.Publish(bus.Event{
			Name:    EventShowtimesFailed,
			BatchID: job.BatchID,
			Payload: BatchFailedPayload{Reason: err.Error()},
		})

		return nil
	}

	if !acquired {
		s.logger.Info("skipping redelivered showtime batch", "batch_id", job.BatchID)
		return nil
	}

	showtimes := make([]domain.Showtime, len(job.Accepted))
	for i, c := range job.Accepted {
		showtimes[i] = domain.Showtime{
			MovieID:   job.MovieID,
			TheaterID: c.TheaterID,
			BatchID:   job.BatchID,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			BasePrice: job.BasePrice,
		}
	}

	var persisted []domain.Showtime

	err = retry(ctx, s.opts.MaxRetries, s.logger, "showtimes.persist", func() error {
		var opErr error
		persisted, opErr = s.showtimes.CreateBatch(ctx, showtimes)
		return opErr
	})

	if err != nil {
		s.logger.Error("showtime batch persistence failed", "batch_id", job.BatchID, "error", err)

		if releaseErr := s.locks.Release(ctx, lockKey); releaseErr != nil {
			s.logger.Error("failed to release batch lock", "key", lockKey, "error", releaseErr)
		}

		s.bus.Publish(bus.Event{
			Name:    EventShowtimesFailed,
			BatchID: job.BatchID,
			Payload: BatchFailedPayload{Reason: err.Error()},
		})

		return nil
	}

	s.logger.Info("showtime batch persisted", "batch_id", job.BatchID, "count", len(persisted))

	s.bus.Publish(bus.Event{
		Name:    EventShowtimesCreated,
		BatchID: job.BatchID,
		Payload: ShowtimesCreatedPayload{Showtimes: persisted},
	})

	return nil
}
