package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	query := `
		SELECT id, title, description, genres, language, release_date, duration, poster_url
		FROM movies
		WHERE id = $1
	`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genres,
		&movie.Language,
		&movie.ReleaseDate,
		&movie.Duration,
		&movie.PosterUrl,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &movie, nil
}

func (p *PostgresMovieRepository) Exists(ctx context.Context, id int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`

	var exists bool

	err := p.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresMovieRepository) GetNowShowing(ctx context.Context, now time.Time) ([]domain.Movie, error) {
	query := `
		SELECT DISTINCT m.id, m.title, m.description, m.genres, m.language,
			m.release_date, m.duration, m.poster_url
		FROM movies m
		JOIN showtimes s ON s.movie_id = m.id AND s.start_time >= $1
		ORDER BY m.id
	`

	return p.queryMovies(ctx, query, now)
}

func (p *PostgresMovieRepository) GetWatchedByCustomer(ctx context.Context, customerID int) ([]domain.Movie, error) {
	query := `
		SELECT DISTINCT m.id, m.title, m.description, m.genres, m.language,
			m.release_date, m.duration, m.poster_url
		FROM movies m
		JOIN tickets t ON t.movie_id = m.id
		JOIN payment_tickets pt ON pt.ticket_id = t.id
		JOIN payments pay ON pay.id = pt.payment_id AND pay.customer_id = $1
		WHERE pay.status = 'completed'
		ORDER BY m.id
	`

	return p.queryMovies(ctx, query, customerID)
}

func (p *PostgresMovieRepository) queryMovies(ctx context.Context, query string, args ...any) ([]domain.Movie, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Genres,
			&movie.Language,
			&movie.ReleaseDate,
			&movie.Duration,
			&movie.PosterUrl,
		)

		if err != nil {
			return nil, err
		}

		movies = append(movies, movie)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}
