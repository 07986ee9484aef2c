package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/metrics"
	"go.uber.org/zap"
)

// sweepTimeout bounds a single DLQ pass so a stuck broker cannot stall the loop
const sweepTimeout = 2 * time.Minute

// GarbageCollector drops dead-lettered meal-plan jobs once they are older
// than the retention window. Failed jobs are kept that long for inspection.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewGarbageCollector creates a collector. A nil purger makes every sweep a no-op.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// WithMetrics counts purged jobs on m
func (gc *GarbageCollector) WithMetrics(m *metrics.Metrics) *GarbageCollector {
	gc.metrics = m
	return gc
}

// Start sweeps once right away and then on every tick until ctx is cancelled.
// Sweep failures are logged and the loop carries on.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if gc.interval <= 0 {
		return fmt.Errorf("dlq gc interval must be positive, got %v", gc.interval)
	}
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		if _, err := gc.Sweep(ctx); err != nil && ctx.Err() == nil {
			gc.logger.Error("dlq_gc_failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs one purge and returns how many jobs were removed
func (gc *GarbageCollector) Sweep(ctx context.Context) (int, error) {
	if gc.purger == nil || ctx.Err() != nil {
		return 0, ctx.Err()
	}
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if n > 0 {
		gc.metrics.RecordDLQPurged(n)
		gc.logger.Info("dlq_gc_purged", zap.Int("count", n), zap.Duration("retention", gc.retention))
	}
	if err != nil {
		return n, fmt.Errorf("failed to purge dead-lettered jobs: %w", err)
	}
	return n, nil
}
