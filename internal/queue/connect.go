package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultConnectAttempts = 10
	initialRetryDelay      = 2 * time.Second
	maxRetryDelay          = 30 * time.Second
)

// retryDelay doubles from initialRetryDelay and is capped at maxRetryDelay
func retryDelay(attempt int) time.Duration {
	if attempt > 10 {
		return maxRetryDelay
	}
	d := initialRetryDelay * time.Duration(1<<uint(attempt))
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// Connect dials RabbitMQ, retrying with exponential backoff so the services
// survive the broker starting after them. attempts <= 0 uses the default.
func Connect(ctx context.Context, amqpURL string, attempts int, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		q, err := NewRabbitMQQueue(amqpURL, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq", zap.Int("attempt", attempt+1))
			return q, nil
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		delay := retryDelay(attempt)
		logger.Warn("rabbitmq_connect_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", attempts, lastErr)
}
