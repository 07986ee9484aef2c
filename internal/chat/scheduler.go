package chat

import (
	"context"
	"fmt"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/queue"
)

// MealScheduler puts a meal on the calendar. The returned result is a
// metrics meal-plan outcome (planned or queued).
type MealScheduler interface {
	Schedule(ctx context.Context, item *models.MealScheduleItem) (string, error)
}

// DirectScheduler writes straight to the meal schedule
type DirectScheduler struct {
	meals database.MealScheduleRepositoryInterface
}

// NewDirectScheduler creates a scheduler backed by the repository
func NewDirectScheduler(meals database.MealScheduleRepositoryInterface) *DirectScheduler {
	return &DirectScheduler{meals: meals}
}

// Schedule implements MealScheduler
func (s *DirectScheduler) Schedule(ctx context.Context, item *models.MealScheduleItem) (string, error) {
	if err := s.meals.Create(ctx, item); err != nil {
		return "", err
	}
	return metrics.MealPlanned, nil
}

// QueueScheduler hands the write to the worker through the job queue
type QueueScheduler struct {
	queue queue.JobQueue
}

// NewQueueScheduler creates a scheduler publishing meal_plan jobs
func NewQueueScheduler(q queue.JobQueue) *QueueScheduler {
	return &QueueScheduler{queue: q}
}

// Schedule implements MealScheduler. Success means the job was accepted by
// the broker, not that the row exists yet.
func (s *QueueScheduler) Schedule(ctx context.Context, item *models.MealScheduleItem) (string, error) {
	job, err := queue.NewMealPlanJob(item)
	if err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("failed to enqueue meal plan: %w", err)
	}
	return metrics.MealQueued, nil
}

var (
	_ MealScheduler = (*DirectScheduler)(nil)
	_ MealScheduler = (*QueueScheduler)(nil)
)
