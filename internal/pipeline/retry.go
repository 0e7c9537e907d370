package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retry runs op with bounded exponential backoff. Transient storage failures
// are retried up to maxRetries times; exhaustion returns the last error so the
// owning stage can publish a terminal batch failure.
func retry(ctx context.Context, maxRetries uint64, logger *slog.Logger, stage string, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		logger.Warn("pipeline stage retrying", "stage", stage, "error", err, "next_attempt_in", next)
	}

	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx), notify)
}
