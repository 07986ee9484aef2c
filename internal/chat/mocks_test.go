package chat

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/services/ai"
	"github.com/google/uuid"
)

// mockConversationRepo keeps conversations in memory. Func fields override behaviour.
type mockConversationRepo struct {
	mu     sync.Mutex
	convs  map[uuid.UUID]*models.Conversation
	order  []uuid.UUID
	touchs int

	createFunc    func(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error)
	latestFunc    func(ctx context.Context, userID uuid.UUID) (*models.Conversation, error)
	getFunc       func(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error)
	touchFunc     func(ctx context.Context, userID, id uuid.UUID) error
	updateTitleFn func(ctx context.Context, userID, id uuid.UUID, title string) error
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{convs: make(map[uuid.UUID]*models.Conversation)}
}

func (m *mockConversationRepo) add(userID uuid.UUID, title *string) *models.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Conversation{ID: uuid.New(), UserID: userID, Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.convs[c.ID] = c
	m.order = append(m.order, c.ID)
	return c
}

func (m *mockConversationRepo) Create(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, title)
	}
	t := title
	return m.add(userID, &t), nil
}

func (m *mockConversationRepo) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		if c := m.convs[m.order[i]]; c != nil && c.UserID == userID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	return c, nil
}

func (m *mockConversationRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Conversation
	for i := len(m.order) - 1; i >= 0; i-- {
		if c := m.convs[m.order[i]]; c != nil && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConversationRepo) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error {
	if m.updateTitleFn != nil {
		return m.updateTitleFn(ctx, userID, id, title)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok {
		return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	c.Title = &title
	return nil
}

func (m *mockConversationRepo) Touch(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	m.touchs++
	m.mu.Unlock()
	if m.touchFunc != nil {
		return m.touchFunc(ctx, userID, id)
	}
	return nil
}

func (m *mockConversationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	delete(m.convs, id)
	return nil
}

// mockMessageRepo records created messages per conversation
type mockMessageRepo struct {
	mu     sync.Mutex
	stored map[uuid.UUID][]*models.Message

	createFunc func(ctx context.Context, userID uuid.UUID, msg *models.Message) error
	listFunc   func(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error)
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{stored: make(map[uuid.UUID][]*models.Message)}
}

func (m *mockMessageRepo) Create(ctx context.Context, userID uuid.UUID, msg *models.Message) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, userID, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	cp.CreatedAt = time.Now()
	m.stored[msg.ConversationID] = append(m.stored[msg.ConversationID], &cp)
	return nil
}

func (m *mockMessageRepo) ListByConversationID(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, conversationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Message(nil), m.stored[conversationID]...), nil
}

// mockResponder returns a canned reply and records the turns it saw
type mockResponder struct {
	mu          sync.Mutex
	respondFunc func(ctx context.Context, turns []ai.ChatMessage) (string, error)
	turns       [][]ai.ChatMessage
	convIDs     []*uuid.UUID
}

func (m *mockResponder) Respond(ctx context.Context, userID uuid.UUID, turns []ai.ChatMessage, conversationID *uuid.UUID) (string, error) {
	m.mu.Lock()
	m.turns = append(m.turns, turns)
	m.convIDs = append(m.convIDs, conversationID)
	m.mu.Unlock()
	if m.respondFunc != nil {
		return m.respondFunc(ctx, turns)
	}
	return "Sounds tasty!", nil
}

func replyWith(text string) func(context.Context, []ai.ChatMessage) (string, error) {
	return func(context.Context, []ai.ChatMessage) (string, error) { return text, nil }
}

// mockScheduler records scheduled meals
type mockScheduler struct {
	mu           sync.Mutex
	items        []*models.MealScheduleItem
	scheduleFunc func(ctx context.Context, item *models.MealScheduleItem) (string, error)
}

func (m *mockScheduler) Schedule(ctx context.Context, item *models.MealScheduleItem) (string, error) {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()
	if m.scheduleFunc != nil {
		return m.scheduleFunc(ctx, item)
	}
	return "planned", nil
}

// mockGuard answers Acquire from a func field
type mockGuard struct {
	acquireFunc func(ctx context.Context, userID uuid.UUID) (bool, error)
	releases    int
}

func (m *mockGuard) Acquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.acquireFunc(ctx, userID)
}

func (m *mockGuard) Release(ctx context.Context, userID uuid.UUID) error {
	m.releases++
	return nil
}

func strPtr(s string) *string { return &s }

func errNoRows() error {
	return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
}
