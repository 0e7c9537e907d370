package repository

import (
	"context"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

// CreateBatch inserts tickets in one statement. Seats that already have a
// ticket for the same showtime are skipped, which makes a redelivered
// materialization a no-op rather than a duplicate.
func (p *PostgresTicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO tickets (
			showtime_id, theater_id, movie_id, batch_id,
			block_name, row_name, seat_number, status, price
		)
		SELECT * FROM unnest(
			$1::int[], $2::int[], $3::int[], $4::text[],
			$5::text[], $6::text[], $7::int[], $8::text[], $9::numeric[]
		)
		ON CONFLICT (showtime_id, block_name, row_name, seat_number) DO NOTHING
	`

	n := len(tickets)
	showtimeIDs := make([]int, n)
	theaterIDs := make([]int, n)
	movieIDs := make([]int, n)
	batchIDs := make([]string, n)
	blocks := make([]string, n)
	rowNames := make([]string, n)
	seatNumbers := make([]int, n)
	statuses := make([]string, n)
	prices := make([]string, n)

	for i, ticket := range tickets {
		showtimeIDs[i] = ticket.ShowtimeID
		theaterIDs[i] = ticket.TheaterID
		movieIDs[i] = ticket.MovieID
		batchIDs[i] = ticket.BatchID
		blocks[i] = ticket.Seat.Block
		rowNames[i] = ticket.Seat.Row
		seatNumbers[i] = ticket.Seat.Number
		statuses[i] = string(ticket.Status)
		prices[i] = ticket.Price.String()
	}

	tag, err := p.db.Exec(
		ctx,
		query,
		showtimeIDs,
		theaterIDs,
		movieIDs,
		batchIDs,
		blocks,
		rowNames,
		seatNumbers,
		statuses,
		prices,
	)

	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func (p *PostgresTicketRepository) GetByIds(ctx context.Context, ids []int) ([]domain.Ticket, error) {
	query := `
		SELECT id, showtime_id, theater_id, movie_id, batch_id,
			block_name, row_name, seat_number, status, price, created_at
		FROM tickets
		WHERE id = ANY($1)
		ORDER BY id
	`

	return p.queryTickets(ctx, query, ids)
}

func (p *PostgresTicketRepository) Find(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query := `
		SELECT id, showtime_id, theater_id, movie_id, batch_id,
			block_name, row_name, seat_number, status, price, created_at
		FROM tickets
		WHERE (batch_id = $1 OR $1 = '')
			AND (showtime_id = $2 OR $2 = 0)
		ORDER BY showtime_id, block_name, row_name, seat_number
	`

	return p.queryTickets(ctx, query, filter.BatchID, filter.ShowtimeID)
}

func (p *PostgresTicketRepository) CountByBatch(ctx context.Context, batchID string) (int, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE batch_id = $1`

	var count int

	err := p.db.QueryRow(ctx, query, batchID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetSalesByShowtimes aggregates ticket counts per showtime. Available is
// everything not yet sold, so sold + available always equals total even when
// tickets sit in intermediate statuses.
func (p *PostgresTicketRepository) GetSalesByShowtimes(
	ctx context.Context,
	showtimeIDs []int) ([]domain.TicketSales, error) {

	query := `
		SELECT showtime_id,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'sold') AS sold,
			COUNT(*) FILTER (WHERE status <> 'sold') AS available
		FROM tickets
		WHERE showtime_id = ANY($1)
		GROUP BY showtime_id
		ORDER BY showtime_id
	`

	rows, err := p.db.Query(ctx, query, showtimeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.TicketSales, 0, len(showtimeIDs))

	for rows.Next() {
		var s domain.TicketSales

		if err := rows.Scan(&s.ShowtimeID, &s.Total, &s.Sold, &s.Available); err != nil {
			return nil, err
		}

		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func (p *PostgresTicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		var ticket domain.Ticket

		err := rows.Scan(
			&ticket.ID,
			&ticket.ShowtimeID,
			&ticket.TheaterID,
			&ticket.MovieID,
			&ticket.BatchID,
			&ticket.Seat.Block,
			&ticket.Seat.Row,
			&ticket.Seat.Number,
			&ticket.Status,
			&ticket.Price,
			&ticket.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
