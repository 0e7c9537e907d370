package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BatchLocker dedupes redelivered work: the queue guarantees at-least-once
// delivery, so each pipeline stage takes a per-batch lock before doing any
// writes and keeps it on success.
type BatchLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisBatchLocker struct {
	client redis.UniversalClient
}

func NewRedisBatchLocker(client redis.UniversalClient) *RedisBatchLocker {
	return &RedisBatchLocker{
		client: client,
	}
}

func (l *RedisBatchLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire batch lock %s: %w", key, err)
	}

	return acquired, nil
}

func (l *RedisBatchLocker) Release(ctx context.Context, key string) error {
	err := l.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("release batch lock %s: %w", key, err)
	}

	return nil
}
