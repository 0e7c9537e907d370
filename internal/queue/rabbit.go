package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxReconnectBackoff = 30 * time.Second

// RabbitQueue implements Queue on top of RabbitMQ. Queues are declared
// durable and messages published persistent, so enqueued jobs survive both
// broker and process restarts. Deliveries are manually acked.
type RabbitQueue struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewRabbitQueue(url string, logger *slog.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	return &RabbitQueue{
		url:    url,
		logger: logger,
		conn:   conn,
	}, nil
}

func (q *RabbitQueue) Enqueue(ctx context.Context, jobName string, payload []byte) error {
	conn, err := q.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, jobName); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	err = ch.PublishWithContext(ctx, "", jobName, false, false, msg)
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}

	return nil
}

func (q *RabbitQueue) Consume(ctx context.Context, jobName string, workers int, handler Handler) error {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			q.consumeLoop(ctx, jobName, handler)
		}()
	}

	wg.Wait()

	return ctx.Err()
}

// consumeLoop keeps a worker draining the queue, reconnecting with capped
// backoff when the broker connection or channel goes away.
func (q *RabbitQueue) consumeLoop(ctx context.Context, jobName string, handler Handler) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		err := q.consumeOnce(ctx, jobName, handler)
		if err == nil || ctx.Err() != nil {
			return
		}

		q.logger.Error("queue consumer disconnected", "job", jobName, "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < maxReconnectBackoff {
			backoff *= 2
		}
	}
}

func (q *RabbitQueue) consumeOnce(ctx context.Context, jobName string, handler Handler) error {
	conn, err := q.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}

	if err := declareQueue(ch, jobName); err != nil {
		return err
	}

	deliveries, err := ch.Consume(jobName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}

			if err := handler(ctx, d.Body); err != nil {
				q.logger.Error("job handler failed", "job", jobName, "error", err)
				_ = d.Nack(false, false)
				continue
			}

			_ = d.Ack(false)
		}
	}
}

func (q *RabbitQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn == nil {
		return nil
	}

	err := q.conn.Close()
	q.conn = nil

	return err
}

// connection returns the shared connection, redialing if it was lost.
func (q *RabbitQueue) connection() (*amqp.Connection, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn, nil
	}

	conn, err := amqp.Dial(q.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	q.conn = conn

	return conn, nil
}

func declareQueue(ch *amqp.Channel, jobName string) error {
	_, err := ch.QueueDeclare(jobName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	return nil
}
