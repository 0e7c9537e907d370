package mocks

import (
	"context"
	"sync"
	"time"
)

// MockLocker is an in-memory batch locker with real acquire-once semantics,
// so redelivery dedupe can be exercised without Redis.
type MockLocker struct {
	AcquireFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseFunc func(ctx context.Context, key string) error

	mu   sync.Mutex
	held map[string]struct{}
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held == nil {
		m.held = make(map[string]struct{})
	}

	if _, ok := m.held[key]; ok {
		return false, nil
	}

	m.held[key] = struct{}{}

	return true, nil
}

func (m *MockLocker) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, key)

	return nil
}
