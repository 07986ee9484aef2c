package database

import (
	"context"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// ConversationRepositoryInterface defines conversation storage.
// Consumers depend on these interfaces so tests can swap in mocks.
type ConversationRepositoryInterface interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error)
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Conversation, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
	UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error
	Touch(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// MessageRepositoryInterface defines message storage
type MessageRepositoryInterface interface {
	Create(ctx context.Context, userID uuid.UUID, msg *models.Message) error
	ListByConversationID(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error)
}

// PantryRepositoryInterface defines pantry storage
type PantryRepositoryInterface interface {
	Create(ctx context.Context, item *models.PantryItem) error
	CreateIngredients(ctx context.Context, userID uuid.UUID, ingredients []string) ([]*models.PantryItem, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// MealScheduleRepositoryInterface defines meal calendar storage
type MealScheduleRepositoryInterface interface {
	Create(ctx context.Context, item *models.MealScheduleItem) error
	ListByUserID(ctx context.Context, userID uuid.UUID, start, end string) ([]*models.MealScheduleItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// UserRepositoryInterface defines user storage
type UserRepositoryInterface interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetPreferences(ctx context.Context, id uuid.UUID) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.UserPreferences) error
}

// CorsConfigRepositoryInterface defines CORS policy storage
type CorsConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
	Set(ctx context.Context, c *models.CorsConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ ConversationRepositoryInterface = (*ConversationRepository)(nil)
	_ MessageRepositoryInterface      = (*MessageRepository)(nil)
	_ PantryRepositoryInterface       = (*PantryRepository)(nil)
	_ MealScheduleRepositoryInterface = (*MealScheduleRepository)(nil)
	_ UserRepositoryInterface         = (*UserRepository)(nil)
	_ CorsConfigRepositoryInterface   = (*CorsConfigRepository)(nil)
)
