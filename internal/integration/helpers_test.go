package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/cinetick/ticketing/internal/app"
	"github.com/cinetick/ticketing/internal/mailer"
	"github.com/cinetick/ticketing/internal/payment"
	"github.com/cinetick/ticketing/internal/queue"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type TestApp struct {
	App      *app.Application
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Queue    *queue.RabbitQueue
	Mailer   *mailer.MockMailer
	Provider *payment.MockPaymentProvider

	MovieID    int
	TheaterID  int
	CustomerID int
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	poolConfig, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.DB.MaxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Url})

	q, err := queue.NewRabbitQueue(cfg.Rabbit.Url, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	mockMailer := mailer.NewMockMailer()
	mockProvider := payment.NewMockPaymentProvider()

	application := app.New(cfg, logger, db, redisClient, q, mockProvider, mockMailer)

	return &TestApp{
		App:      application,
		DB:       db,
		Redis:    redisClient,
		Queue:    q,
		Mailer:   mockMailer,
		Provider: mockProvider,
	}, nil
}

func (a *TestApp) Close() {
	a.Queue.Close()
	a.Redis.Close()
	a.DB.Close()
}

func seedCatalog(ctx context.Context, a *TestApp) error {
	err := a.DB.QueryRow(ctx, `
		INSERT INTO movies (title, description, genres, language, release_date, duration, poster_url)
		VALUES ('Interstellar', 'Space farming', '{"Sci-Fi","Adventure"}', 'en', '2014-11-07', 169, '')
		RETURNING id
	`).Scan(&a.MovieID)
	if err != nil {
		return fmt.Errorf("seed movie: %w", err)
	}

	seatMap := `[{"name": "A", "rows": [{"name": "1", "seats": "OOXO"}]}]`

	err = a.DB.QueryRow(ctx, `
		INSERT INTO theaters (name, seat_map)
		VALUES ('Downtown', $1)
		RETURNING id
	`, seatMap).Scan(&a.TheaterID)
	if err != nil {
		return fmt.Errorf("seed theater: %w", err)
	}

	err = a.DB.QueryRow(ctx, `
		INSERT INTO customers (first_name, last_name, email)
		VALUES ('Ada', 'Lovelace', 'ada@example.com')
		RETURNING id
	`).Scan(&a.CustomerID)
	if err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	return nil
}

func (s *BaseSuite) doJSON(method, path string, body any) (*http.Response, []byte) {
	s.T().Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.server.Client().Do(req)
	require.NoError(s.T(), err)
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	require.NoError(s.T(), err)

	return res, payload
}

func decimalFromString(t testing.TB, raw string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)

	return d
}

// eventually polls cond until it returns true or the deadline passes. The
// pipeline is asynchronous, so assertions on its output need to wait for the
// queue and bus to drain.
func eventually(t testing.TB, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}

	return cond()
}
