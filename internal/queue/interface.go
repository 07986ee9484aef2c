package queue

import (
	"context"
	"time"
)

// MessageInterface is one delivered job awaiting settlement
type MessageInterface interface {
	Ack() error
	// Nack with requeue=false sends the job to the dead letter queue
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries meal-plan jobs from the API server to the workers.
type JobQueue interface {
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams deliveries until ctx is cancelled or the broker goes away,
	// at which point both channels are closed. Each message must be acked or
	// nacked. prefetchCount caps unsettled messages per consumer.
	Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered jobs older than retention and reports how many went
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
