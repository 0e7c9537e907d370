// Package queue provides the durable work queue behind the showtime pipeline.
// Jobs survive a process restart and are delivered at least once, so handlers
// must tolerate redelivery.
package queue

import "context"

type Handler func(ctx context.Context, payload []byte) error

type Queue interface {
	// Enqueue durably stores a job for asynchronous processing.
	Enqueue(ctx context.Context, jobName string, payload []byte) error

	// Consume starts the given number of workers draining jobName and blocks
	// until ctx is cancelled. A handler error rejects the delivery without
	// requeueing; handlers own their retries and surface terminal failures
	// through events.
	Consume(ctx context.Context, jobName string, workers int, handler Handler) error
}
