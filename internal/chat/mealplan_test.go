package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

func TestShouldPlanMeal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		reply   string
		want    bool
	}{
		{name: "both keywords", content: "Plan dinner for April 20th", reply: "Here is a recipe for soup.", want: true},
		{name: "uppercase recipe", content: "please PLAN it", reply: "RECIPE for Tacos", want: true},
		{name: "no plan", content: "What is for dinner?", reply: "Here is a recipe for soup.", want: false},
		{name: "no recipe", content: "plan my week", reply: "Sure, what do you like?", want: false},
		{name: "planet counts as plan", content: "planet-friendly meals", reply: "A recipe for beans", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldPlanMeal(tt.content, tt.reply); got != tt.want {
				t.Errorf("ShouldPlanMeal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractMealDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{name: "ordinal without year", content: "Plan this for April 20th", want: "2026-04-20", wantOK: true},
		{name: "abbreviated month with year", content: "plan lunch on Jan 3, 2027", want: "2027-01-03", wantOK: true},
		{name: "year without comma", content: "plan it for december 25 2026", want: "2026-12-25", wantOK: true},
		{name: "sept abbreviation", content: "plan for Sept 2nd", want: "2026-09-02", wantOK: true},
		{name: "no date", content: "plan a pasta night", wantOK: false},
		{name: "unknown month", content: "plan for Smarch 3rd", wantOK: false},
		{name: "impossible day", content: "plan for February 30th", wantOK: false},
		{name: "leap day in leap year", content: "plan for Feb 29, 2028", want: "2028-02-29", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractMealDate(tt.content, now)
			if ok != tt.wantOK {
				t.Fatalf("ExtractMealDate(%q) ok = %v, want %v", tt.content, ok, tt.wantOK)
			}
			if ok && got.Format(models.MealDateLayout) != tt.want {
				t.Errorf("ExtractMealDate(%q) = %s, want %s", tt.content, got.Format(models.MealDateLayout), tt.want)
			}
		})
	}
}

func TestExtractRecipeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reply  string
		want   string
		wantOK bool
	}{
		{name: "stops at colon", reply: "Here's a recipe for Lemon Garlic Chicken:\n1. ...", want: "Lemon Garlic Chicken", wantOK: true},
		{name: "stops at period", reply: "This is a Recipe for  mushroom risotto . Enjoy", want: "mushroom risotto", wantOK: true},
		{name: "stops at newline", reply: "recipe for Tomato Soup\nIngredients", want: "Tomato Soup", wantOK: true},
		{name: "absent", reply: "Try roasting vegetables.", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractRecipeName(tt.reply)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractRecipeName() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func newTestPlanner(s MealScheduler, now time.Time) *MealPlanner {
	p := NewMealPlanner(s, nil, nil)
	p.now = func() time.Time { return now }
	return p
}

func TestMealPlanner_Plan(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC)

	t.Run("schedules dinner", func(t *testing.T) {
		t.Parallel()
		sched := &mockScheduler{}
		session := NewSession(uuid.New())
		newTestPlanner(sched, now).Plan(context.Background(), session,
			"Plan this for April 20th", "Here's a recipe for Lemon Chicken: ...")

		if len(sched.items) != 1 {
			t.Fatalf("scheduled %d meals, want 1", len(sched.items))
		}
		item := sched.items[0]
		if item.Date != "2026-04-20" || item.MealType != models.MealTypeDinner || item.RecipeName != "Lemon Chicken" {
			t.Errorf("item = %+v", item)
		}
		if !strings.HasPrefix(item.RecipeID, "generated_") {
			t.Errorf("RecipeID = %q", item.RecipeID)
		}
		if item.UserID != session.UserID() {
			t.Errorf("UserID = %s, want %s", item.UserID, session.UserID())
		}

		snap := session.Snapshot(true)
		if len(snap.Notifications) != 1 || snap.Notifications[0].Title != "Meal Planned!" {
			t.Fatalf("notifications = %+v", snap.Notifications)
		}
		want := "Lemon Chicken has been added to your meal calendar for 2026-04-20"
		if snap.Notifications[0].Description != want {
			t.Errorf("description = %q, want %q", snap.Notifications[0].Description, want)
		}
	})

	t.Run("asks for a date", func(t *testing.T) {
		t.Parallel()
		sched := &mockScheduler{}
		session := NewSession(uuid.New())
		newTestPlanner(sched, now).Plan(context.Background(), session,
			"plan something nice", "Here is a recipe for soup.")

		if len(sched.items) != 0 {
			t.Errorf("scheduled %d meals, want 0", len(sched.items))
		}
		msgs := session.Messages()
		if len(msgs) != 1 || msgs[0].Content != NeedDateText || msgs[0].Role != models.MessageRoleAssistant {
			t.Errorf("transcript = %+v", msgs)
		}
	})

	t.Run("date but no recipe name", func(t *testing.T) {
		t.Parallel()
		sched := &mockScheduler{}
		session := NewSession(uuid.New())
		newTestPlanner(sched, now).Plan(context.Background(), session,
			"plan for May 1st", "That recipe sounds great!")

		if len(sched.items) != 0 || len(session.Messages()) != 0 || len(session.Snapshot(true).Notifications) != 0 {
			t.Error("expected no effect without a recipe name")
		}
	})

	t.Run("scheduler failure notifies", func(t *testing.T) {
		t.Parallel()
		sched := &mockScheduler{scheduleFunc: func(context.Context, *models.MealScheduleItem) (string, error) {
			return "", errors.New("insert failed")
		}}
		session := NewSession(uuid.New())
		newTestPlanner(sched, now).Plan(context.Background(), session,
			"plan for May 1st", "A recipe for Beans.")

		snap := session.Snapshot(true)
		if len(snap.Notifications) != 1 || snap.Notifications[0].Description != MealFailedText {
			t.Errorf("notifications = %+v", snap.Notifications)
		}
		if snap.Notifications[0].Variant != models.NotificationDestructive {
			t.Errorf("variant = %q", snap.Notifications[0].Variant)
		}
	})

	t.Run("not a planning exchange", func(t *testing.T) {
		t.Parallel()
		sched := &mockScheduler{}
		session := NewSession(uuid.New())
		newTestPlanner(sched, now).Plan(context.Background(), session, "hello", "hi")
		if len(sched.items) != 0 || len(session.Messages()) != 0 {
			t.Error("expected no effect")
		}
	})
}
