package chat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NeedDateText is appended to the transcript when a meal plan has no usable date
const NeedDateText = "I notice you want to plan a meal, but I couldn't detect a specific date. " +
	"Please specify when you'd like to plan this meal (e.g., 'Plan this for April 20th')."

var (
	mealDatePattern   = regexp.MustCompile(`(?i)(?:for|on)\s+([A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`)
	datePartsPattern  = regexp.MustCompile(`(?i)^([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	recipeNamePattern = regexp.MustCompile(`(?i)recipe for ([^.:\n]+)`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ShouldPlanMeal reports whether an exchange looks like a meal-planning request
func ShouldPlanMeal(content, reply string) bool {
	return strings.Contains(strings.ToLower(content), "plan") &&
		strings.Contains(strings.ToLower(reply), "recipe")
}

// ExtractMealDate finds a "for April 20th" or "on Jan 3, 2027" phrase in content.
// A missing year means now's year. Phrases naming an unknown month or a day the
// month does not have are ignored.
func ExtractMealDate(content string, now time.Time) (time.Time, bool) {
	m := mealDatePattern.FindStringSubmatch(content)
	if m == nil {
		return time.Time{}, false
	}
	parts := datePartsPattern.FindStringSubmatch(strings.TrimSpace(m[1]))
	if parts == nil {
		return time.Time{}, false
	}

	month, ok := monthNames[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	year := now.Year()
	if parts[3] != "" {
		if year, err = strconv.Atoi(parts[3]); err != nil {
			return time.Time{}, false
		}
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	// time.Date normalises Feb 30 into March; treat that as no date
	if date.Month() != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// ExtractRecipeName returns the text after "recipe for" up to the next '.', ':' or newline
func ExtractRecipeName(reply string) (string, bool) {
	m := recipeNamePattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// MealPlanner schedules meals mentioned in a finished exchange
type MealPlanner struct {
	scheduler MealScheduler
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewMealPlanner creates a planner writing through scheduler
func NewMealPlanner(scheduler MealScheduler, logger *zap.Logger, m *metrics.Metrics) *MealPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPlanner{scheduler: scheduler, logger: logger, metrics: m, now: time.Now}
}

// Plan inspects one exchange and, when it asks for a meal plan, either schedules
// the recipe or asks the user for a date. Outcomes are reported on the session.
func (p *MealPlanner) Plan(ctx context.Context, session *Session, content, reply string) {
	if !ShouldPlanMeal(content, reply) {
		return
	}
	now := p.now()

	date, ok := ExtractMealDate(content, now)
	if !ok {
		session.mu.Lock()
		session.transcript.Append(Message{
			ID:        uuid.NewString(),
			Role:      models.MessageRoleAssistant,
			Content:   NeedDateText,
			Timestamp: now,
		})
		session.mu.Unlock()
		p.metrics.RecordMealPlan(metrics.MealNeedsDate)
		return
	}

	recipe, ok := ExtractRecipeName(reply)
	if !ok {
		p.metrics.RecordMealPlan(metrics.MealNoRecipe)
		return
	}

	item := &models.MealScheduleItem{
		UserID:     session.UserID(),
		Date:       date.Format(models.MealDateLayout),
		MealType:   models.MealTypeDinner,
		RecipeID:   fmt.Sprintf("generated_%d", now.UnixMilli()),
		RecipeName: recipe,
	}

	result, err := p.scheduler.Schedule(ctx, item)
	if err != nil {
		p.logger.Error("meal_plan_failed",
			zap.String("user_id", item.UserID.String()),
			zap.String("date", item.Date),
			zap.Error(err))
		p.metrics.RecordMealPlan(metrics.MealPlanFailed)
		session.Notify(models.NewErrorNotification("Error", MealFailedText))
		return
	}

	p.logger.Info("meal_planned",
		zap.String("user_id", item.UserID.String()),
		zap.String("date", item.Date),
		zap.String("result", result))
	p.metrics.RecordMealPlan(result)
	session.Notify(models.NewNotification("Meal Planned!",
		fmt.Sprintf("%s has been added to your meal calendar for %s", item.RecipeName, item.Date)))
}
