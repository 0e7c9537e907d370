package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT id, movie_id, theater_id, batch_id, start_time, end_time, base_price, created_at
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.TheaterID,
		&showtime.BatchID,
		&showtime.StartTime,
		&showtime.EndTime,
		&showtime.BasePrice,
		&showtime.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) Find(ctx context.Context, filter domain.ShowtimeFilter) ([]domain.Showtime, error) {
	query := `
		SELECT id, movie_id, theater_id, batch_id, start_time, end_time, base_price, created_at
		FROM showtimes
		WHERE (movie_id = $1 OR $1 = 0)
			AND (theater_id = $2 OR $2 = 0)
			AND (batch_id = $3 OR $3 = '')
			AND ($4::date IS NULL OR start_time::date = $4::date)
		ORDER BY start_time, id
	`

	var date *time.Time
	if !filter.Date.IsZero() {
		date = &filter.Date
	}

	rows, err := p.db.Query(ctx, query, filter.MovieID, filter.TheaterID, filter.BatchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]domain.Showtime, 0)

	for rows.Next() {
		var showtime domain.Showtime

		err := rows.Scan(
			&showtime.ID,
			&showtime.MovieID,
			&showtime.TheaterID,
			&showtime.BatchID,
			&showtime.StartTime,
			&showtime.EndTime,
			&showtime.BasePrice,
			&showtime.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		showtimes = append(showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}

func (p *PostgresShowtimeRepository) GetIntervalsByTheaters(
	ctx context.Context,
	theaterIDs []int) (map[int][]domain.Interval, error) {

	query := `
		SELECT theater_id, start_time, end_time
		FROM showtimes
		WHERE theater_id = ANY($1)
		ORDER BY theater_id, start_time
	`

	rows, err := p.db.Query(ctx, query, theaterIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make(map[int][]domain.Interval)

	for rows.Next() {
		var theaterID int
		var interval domain.Interval

		if err := rows.Scan(&theaterID, &interval.Start, &interval.End); err != nil {
			return nil, err
		}

		intervals[theaterID] = append(intervals[theaterID], interval)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return intervals, nil
}

func (p *PostgresShowtimeRepository) CreateBatch(
	ctx context.Context,
	showtimes []domain.Showtime) ([]domain.Showtime, error) {

	created := make([]domain.Showtime, len(showtimes))
	copy(created, showtimes)

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO showtimes (movie_id, theater_id, batch_id, start_time, end_time, base_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		for i := range created {
			err := tx.QueryRow(
				ctx,
				query,
				created[i].MovieID,
				created[i].TheaterID,
				created[i].BatchID,
				created[i].StartTime,
				created[i].EndTime,
				created[i].BasePrice,
			).Scan(&created[i].ID, &created[i].CreatedAt)

			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}
