package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeMealPlan writes a meal extracted from a chat exchange to the calendar
	JobTypeMealPlan JobType = "meal_plan"
)

// Job represents a job in the queue
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Type      JobType         `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	NotAfter  *time.Time      `json:"not_after,omitempty"` // Latest time to process job (nil = no expiration)
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

// NewMealPlanJob wraps a meal schedule item. The item's owner becomes the job's user.
func NewMealPlanJob(item *models.MealScheduleItem) (*Job, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal: %w", err)
	}
	job := NewJob(JobTypeMealPlan, item.UserID)
	job.Payload = payload
	return job, nil
}

// MealItem decodes the payload of a meal_plan job
func (j *Job) MealItem() (*models.MealScheduleItem, error) {
	if j.Type != JobTypeMealPlan {
		return nil, fmt.Errorf("job %s is %s, not %s", j.ID, j.Type, JobTypeMealPlan)
	}
	var item models.MealScheduleItem
	if err := json.Unmarshal(j.Payload, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal: %w", err)
	}
	// The job owner wins over whatever the payload claims
	item.UserID = j.UserID
	return &item, nil
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}
