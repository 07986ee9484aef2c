package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	job := NewJob(JobTypeMealPlan, userID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeMealPlan {
		t.Errorf("Expected job type to be %s, got %s", JobTypeMealPlan, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID to be %s, got %s", userID, job.UserID)
	}
	if job.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestMealPlanJob_RoundTrip(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	item := &models.MealScheduleItem{
		UserID:     owner,
		Date:       "2026-04-20",
		MealType:   models.MealTypeDinner,
		RecipeID:   "generated_1",
		RecipeName: "Lemon Chicken",
	}
	job, err := NewMealPlanJob(item)
	if err != nil {
		t.Fatalf("NewMealPlanJob() error = %v", err)
	}

	// Simulate the trip through the broker
	body, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Job
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := decoded.MealItem()
	if err != nil {
		t.Fatalf("MealItem() error = %v", err)
	}
	if got.RecipeName != "Lemon Chicken" || got.Date != "2026-04-20" || got.MealType != models.MealTypeDinner {
		t.Errorf("MealItem() = %+v", got)
	}
	if got.UserID != owner {
		t.Errorf("UserID = %s, want %s", got.UserID, owner)
	}
}

func TestJob_MealItem(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	tests := []struct {
		name    string
		job     *Job
		wantErr bool
	}{
		{
			name:    "wrong job type",
			job:     &Job{ID: uuid.New(), Type: "other", UserID: owner, Payload: json.RawMessage(`{}`)},
			wantErr: true,
		},
		{
			name:    "malformed payload",
			job:     &Job{ID: uuid.New(), Type: JobTypeMealPlan, UserID: owner, Payload: json.RawMessage(`{"date":`)},
			wantErr: true,
		},
		{
			name: "payload owner is overridden",
			job: &Job{ID: uuid.New(), Type: JobTypeMealPlan, UserID: owner,
				Payload: json.RawMessage(`{"user_id":"` + uuid.NewString() + `","date":"2026-01-02"}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item, err := tt.job.MealItem()
			if (err != nil) != tt.wantErr {
				t.Fatalf("MealItem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && item.UserID != owner {
				t.Errorf("UserID = %s, want %s", item.UserID, owner)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{name: "no expiration", notAfter: nil, want: false},
		{name: "expired", notAfter: timePtr(now.Add(-1 * time.Hour)), want: true},
		{name: "not expired", notAfter: timePtr(now.Add(1 * time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeMealPlan, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Helper function to create time pointers
func timePtr(t time.Time) *time.Time {
	return &t
}
