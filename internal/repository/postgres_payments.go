package repository

import (
	"context"
	"errors"

	"github.com/cinetick/ticketing/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// CreatePurchase flips the listed tickets from open to sold and records the
// payment, all in one transaction. The update carries the open-status guard,
// so a ticket sold by a concurrent purchase makes the affected count fall
// short and the whole transaction rolls back.
func (p *PostgresPaymentRepository) CreatePurchase(
	ctx context.Context,
	payment *domain.Payment,
	ticketIDs []int) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE tickets
			SET status = 'sold'
			WHERE id = ANY($1) AND status = 'open'
		`

		tag, err := tx.Exec(ctx, query, ticketIDs)
		if err != nil {
			return err
		}

		if int(tag.RowsAffected()) != len(ticketIDs) {
			return domain.ErrTicketUnavailable
		}

		query = `
			INSERT INTO payments (customer_id, amount, currency, status, provider_ref)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			payment.CustomerID,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.ProviderRef,
		).Scan(&payment.ID, &payment.CreatedAt)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return domain.ErrCustomerNotFound
			}

			return err
		}

		rows := make([][]any, 0, len(ticketIDs))
		for _, ticketID := range ticketIDs {
			rows = append(rows, []any{payment.ID, ticketID})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"payment_tickets"},
			[]string{"payment_id", "ticket_id"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		return nil
	})
}

func (p *PostgresPaymentRepository) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	query := `
		SELECT p.id, p.customer_id, p.amount, p.currency, p.status, p.provider_ref,
			COALESCE(array_agg(pt.ticket_id ORDER BY pt.ticket_id)
				FILTER (WHERE pt.ticket_id IS NOT NULL), '{}'),
			p.created_at
		FROM payments p
		LEFT JOIN payment_tickets pt ON pt.payment_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.CustomerID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.TicketIDs,
		&payment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}
