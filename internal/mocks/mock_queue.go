package mocks

import (
	"context"
	"sync"

	"github.com/cinetick/ticketing/internal/queue"
)

// MockQueue records enqueued jobs and lets tests drive handlers directly.
type MockQueue struct {
	EnqueueFunc func(ctx context.Context, jobName string, payload []byte) error
	ConsumeFunc func(ctx context.Context, jobName string, workers int, handler queue.Handler) error

	mu       sync.Mutex
	enqueued []EnqueuedJob
}

type EnqueuedJob struct {
	JobName string
	Payload []byte
}

func (m *MockQueue) Enqueue(ctx context.Context, jobName string, payload []byte) error {
	m.mu.Lock()
	m.enqueued = append(m.enqueued, EnqueuedJob{JobName: jobName, Payload: payload})
	m.mu.Unlock()

	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, jobName, payload)
	}

	return nil
}

func (m *MockQueue) Consume(ctx context.Context, jobName string, workers int, handler queue.Handler) error {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, jobName, workers, handler)
	}

	<-ctx.Done()

	return ctx.Err()
}

// Enqueued returns a copy of all jobs recorded so far.
func (m *MockQueue) Enqueued() []EnqueuedJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]EnqueuedJob, len(m.enqueued))
	copy(jobs, m.enqueued)

	return jobs
}
