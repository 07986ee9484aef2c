package models

import (
	"time"

	"github.com/google/uuid"
)

// MealType is the slot of the day a meal is planned for
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// MealDateLayout is the ISO day format used for MealScheduleItem.Date
const MealDateLayout = "2006-01-02"

// MealScheduleItem is a meal placed on the calendar. Several items may share a
// date and meal type.
type MealScheduleItem struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Date       string    `json:"date"`
	MealType   MealType  `json:"meal_type"`
	RecipeID   string    `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
