package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultIngredientQuantity and DefaultIngredientCategory are applied when recipe
// ingredients are bulk-added to the pantry.
const (
	DefaultIngredientQuantity = "1"
	DefaultIngredientCategory = "Other"
)

// PantryItem is one ingredient a user has on hand
type PantryItem struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	IngredientName string    `json:"ingredient_name"`
	Quantity       *string   `json:"quantity,omitempty"`
	Category       *string   `json:"category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
