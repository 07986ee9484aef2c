package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/request"
	"github.com/benvon/cook-with-ai/internal/services/ai"
	"github.com/benvon/cook-with-ai/internal/services/auth"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(request.WithUser(r.Context(), user, "token-"+user.ID.String()))
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "cook@example.com"}
}

// mockPantryRepo is a mock implementation of PantryRepositoryInterface
type mockPantryRepo struct {
	createFunc func(ctx context.Context, item *models.PantryItem) error
	bulkFunc   func(ctx context.Context, userID uuid.UUID, ingredients []string) ([]*models.PantryItem, error)
	listFunc   func(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error)
	deleteFunc func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockPantryRepo) Create(ctx context.Context, item *models.PantryItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	item.ID = uuid.New()
	return nil
}

func (m *mockPantryRepo) CreateIngredients(ctx context.Context, userID uuid.UUID, ingredients []string) ([]*models.PantryItem, error) {
	if m.bulkFunc != nil {
		return m.bulkFunc(ctx, userID, ingredients)
	}
	return nil, nil
}

func (m *mockPantryRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return []*models.PantryItem{}, nil
}

func (m *mockPantryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, id)
	}
	return nil
}

// mockMealRepo is a mock implementation of MealScheduleRepositoryInterface
type mockMealRepo struct {
	createFunc func(ctx context.Context, item *models.MealScheduleItem) error
	listFunc   func(ctx context.Context, userID uuid.UUID, start, end string) ([]*models.MealScheduleItem, error)
	deleteFunc func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockMealRepo) Create(ctx context.Context, item *models.MealScheduleItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	item.ID = uuid.New()
	return nil
}

func (m *mockMealRepo) ListByUserID(ctx context.Context, userID uuid.UUID, start, end string) ([]*models.MealScheduleItem, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, start, end)
	}
	return []*models.MealScheduleItem{}, nil
}

func (m *mockMealRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, id)
	}
	return nil
}

// memConversations is an in-memory ConversationRepositoryInterface
type memConversations struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*models.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{convs: make(map[uuid.UUID]*models.Conversation)}
}

func (m *memConversations) Create(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Add(time.Duration(len(m.convs)) * time.Millisecond)
	c := &models.Conversation{ID: uuid.New(), UserID: userID, Title: &title, CreatedAt: now, UpdatedAt: now}
	m.convs[c.ID] = c
	return c, nil
}

func (m *memConversations) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	list, _ := m.ListByUserID(ctx, userID)
	if len(list) == 0 {
		return nil, fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	return list[0], nil
}

func (m *memConversations) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	return c, nil
}

func (m *memConversations) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Conversation, 0)
	for _, c := range m.convs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memConversations) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	c.Title = &title
	return nil
}

func (m *memConversations) Touch(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func (m *memConversations) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	delete(m.convs, id)
	return nil
}

// memMessages is an in-memory MessageRepositoryInterface
type memMessages struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func (m *memMessages) Create(ctx context.Context, userID uuid.UUID, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memMessages) ListByConversationID(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Message, 0)
	for _, msg := range m.msgs {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// mockResponder is a mock AIResponder
type mockResponder struct {
	respondFunc func(ctx context.Context, userID uuid.UUID, turns []ai.ChatMessage, conversationID *uuid.UUID) (string, error)
}

func (m *mockResponder) Respond(ctx context.Context, userID uuid.UUID, turns []ai.ChatMessage, conversationID *uuid.UUID) (string, error) {
	if m.respondFunc != nil {
		return m.respondFunc(ctx, userID, turns, conversationID)
	}
	return "Try a shakshuka.", nil
}

// mockAuthClient is a mock AuthClient
type mockAuthClient struct {
	signUpFunc  func(ctx context.Context, email, password string) (*auth.SignUpResult, error)
	signInFunc  func(ctx context.Context, email, password string) (*oauth2.Token, error)
	signOutFunc func(ctx context.Context, accessToken string) error
}

func (m *mockAuthClient) SignUp(ctx context.Context, email, password string) (*auth.SignUpResult, error) {
	return m.signUpFunc(ctx, email, password)
}

func (m *mockAuthClient) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockAuthClient) SignOut(ctx context.Context, accessToken string) error {
	return m.signOutFunc(ctx, accessToken)
}

// mockPreferences is a mock PreferencesService
type mockPreferences struct {
	current models.UserPreferences
	loadErr error
	saveErr error
	saved   []models.UserPreferences
}

func (m *mockPreferences) Load(ctx context.Context, userID uuid.UUID) (models.UserPreferences, error) {
	return m.current, m.loadErr
}

func (m *mockPreferences) Update(current models.UserPreferences, patch models.PreferencesPatch) (models.UserPreferences, error) {
	return current.Apply(patch), nil
}

func (m *mockPreferences) Save(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) (models.Notification, error) {
	if m.saveErr != nil {
		return models.NewErrorNotification("Error", "Failed to save preferences. Please try again."), m.saveErr
	}
	m.saved = append(m.saved, prefs)
	return models.NewNotification("Success", "Your preferences have been saved."), nil
}
