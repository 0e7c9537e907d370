package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTheaterRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTheaterRepository(db *pgxpool.Pool) *PostgresTheaterRepository {
	return &PostgresTheaterRepository{
		db: db,
	}
}

func (p *PostgresTheaterRepository) GetById(ctx context.Context, id int) (*domain.Theater, error) {
	query := `
		SELECT id, name, latitude, longitude, seat_map
		FROM theaters
		WHERE id = $1
	`

	var theater domain.Theater
	var seatMapJson json.RawMessage

	err := p.db.QueryRow(ctx, query, id).Scan(
		&theater.ID,
		&theater.Name,
		&theater.Latitude,
		&theater.Longitude,
		&seatMapJson,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if len(seatMapJson) > 0 {
		if err := json.Unmarshal(seatMapJson, &theater.SeatMap); err != nil {
			return nil, err
		}
	}

	return &theater, nil
}

func (p *PostgresTheaterRepository) ExistAll(ctx context.Context, ids []int) (bool, error) {
	query := `SELECT COUNT(DISTINCT id) FROM theaters WHERE id = ANY($1)`

	var count int

	err := p.db.QueryRow(ctx, query, ids).Scan(&count)
	if err != nil {
		return false, err
	}

	distinct := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}

	return count == len(distinct), nil
}
