package workers

import (
	"context"
	"fmt"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/queue"
	"go.uber.org/zap"
)

// MealPlanWorker writes queued meal plans to the calendar
type MealPlanWorker struct {
	meals   database.MealScheduleRepositoryInterface
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMealPlanWorker creates a new meal plan worker
func NewMealPlanWorker(meals database.MealScheduleRepositoryInterface, m *metrics.Metrics, logger *zap.Logger) *MealPlanWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPlanWorker{meals: meals, metrics: m, logger: logger}
}

// ProcessMealPlanJob inserts the meal carried by job
func (w *MealPlanWorker) ProcessMealPlanJob(ctx context.Context, job *queue.Job) error {
	item, err := job.MealItem()
	if err != nil {
		return err
	}
	if err := w.meals.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to schedule meal: %w", err)
	}

	w.logger.Info("meal_plan_job_processed",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("meal_id", item.ID.String()),
		zap.String("date", item.Date),
	)
	return nil
}

// ProcessJob processes a job based on its type. Failures are not retried:
// the message is rejected and lands in the dead letter queue.
func (w *MealPlanWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeMealPlan:
		if err := w.ProcessMealPlanJob(ctx, job); err != nil {
			w.metrics.RecordMealPlan(metrics.MealJobDeadLetter)
			if nackErr := msg.Nack(false); nackErr != nil {
				w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
			}
			return fmt.Errorf("meal plan job failed: %w", err)
		}
		w.metrics.RecordMealPlan(metrics.MealJobProcessed)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			w.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run consumes jobs from q until ctx is cancelled or the delivery channel closes
func (w *MealPlanWorker) Run(ctx context.Context, q queue.JobQueue, prefetch int) error {
	msgChan, errChan, err := q.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	w.logger.Info("worker_consuming", zap.Int("prefetch", prefetch))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			w.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				w.logger.Info("message_channel_closed")
				return nil
			}
			if err := w.ProcessJob(ctx, msg); err != nil {
				w.logger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}
