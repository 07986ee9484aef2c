package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns which conversation a session shows and keeps the transcript
// in step with the stored messages.
type Manager struct {
	conversations database.ConversationRepositoryInterface
	messages      database.MessageRepositoryInterface
	logger        *zap.Logger
	now           func() time.Time
}

// NewManager creates a conversation manager
func NewManager(
	conversations database.ConversationRepositoryInterface,
	messages database.MessageRepositoryInterface,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		conversations: conversations,
		messages:      messages,
		logger:        logger,
		now:           time.Now,
	}
}

// Initialize opens the user's most recent conversation, creating one when
// there is none. It does real work once per session; later calls return
// immediately. Anonymous sessions just get the welcome message.
func (m *Manager) Initialize(ctx context.Context, session *Session) error {
	if !session.Authenticated() {
		session.mu.Lock()
		session.showWelcome(m.now())
		session.mu.Unlock()
		return nil
	}

	session.mu.Lock()
	if session.initialized {
		session.mu.Unlock()
		return nil
	}
	session.initialized = true
	session.mu.Unlock()

	userID := session.UserID()
	conv, err := m.conversations.GetLatestByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		conv, err = m.conversations.Create(ctx, userID, DefaultConversationTitle(m.now()))
	}
	if err != nil {
		m.logger.Error("conversation_init_failed", zap.String("user_id", userID.String()), zap.Error(err))
		session.mu.Lock()
		session.showWelcome(m.now())
		session.notifications = append(session.notifications, models.NewErrorNotification("Error", LoadFailedText))
		session.mu.Unlock()
		return &ConversationError{Op: "initialize", Err: err}
	}

	session.mu.Lock()
	session.setConversation(&conv.ID, conv.Title)
	session.mu.Unlock()

	return m.load(ctx, session, conv.ID)
}

// SelectConversation switches the session to id and loads its messages.
// A nil id leaves the session on the welcome message.
func (m *Manager) SelectConversation(ctx context.Context, session *Session, id *uuid.UUID) error {
	session.mu.Lock()
	if id != nil && sameID(session.conversationID, id) && session.transcript.Len() > 0 {
		session.mu.Unlock()
		return nil
	}
	session.setConversation(id, nil)
	if id == nil || !session.Authenticated() {
		session.showWelcome(m.now())
		session.mu.Unlock()
		return nil
	}
	session.mu.Unlock()

	return m.load(ctx, session, *id)
}

// load fetches the title and messages of id into the session. Any failure
// leaves the welcome message and a notification.
func (m *Manager) load(ctx context.Context, session *Session, id uuid.UUID) error {
	userID := session.UserID()

	conv, err := m.conversations.GetByID(ctx, userID, id)
	var stored []*models.Message
	if err == nil {
		stored, err = m.messages.ListByConversationID(ctx, userID, id)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	// The user moved on while we were reading
	if !sameID(session.conversationID, &id) {
		return nil
	}

	if err != nil {
		m.logger.Error("conversation_load_failed",
			zap.String("user_id", userID.String()),
			zap.String("conversation_id", id.String()),
			zap.Error(err))
		session.showWelcome(m.now())
		session.notifications = append(session.notifications, models.NewErrorNotification("Error", LoadFailedText))
		return &ConversationError{Op: "load", Err: err}
	}

	session.title = copyString(conv.Title)
	if len(stored) == 0 {
		session.showWelcome(m.now())
		return nil
	}

	msgs := make([]Message, 0, len(stored))
	for _, s := range stored {
		msgs = append(msgs, FromStored(s))
	}
	session.transcript.Replace(msgs)
	return nil
}

// ClearMessages starts over. Signed-in users get a fresh "New Conversation";
// anonymous sessions fall back to the welcome message.
func (m *Manager) ClearMessages(ctx context.Context, session *Session) error {
	session.mu.Lock()
	session.transcript.Reset()
	session.setConversation(nil, nil)
	if !session.Authenticated() {
		session.showWelcome(m.now())
		session.mu.Unlock()
		return nil
	}
	session.mu.Unlock()

	userID := session.UserID()
	conv, err := m.conversations.Create(ctx, userID, NewConversationTitle)
	if err != nil {
		m.logger.Error("conversation_create_failed", zap.String("user_id", userID.String()), zap.Error(err))
		session.mu.Lock()
		session.showWelcome(m.now())
		session.mu.Unlock()
		return &ConversationError{Op: "create", Err: err}
	}

	session.mu.Lock()
	title := NewConversationTitle
	session.setConversation(&conv.ID, &title)
	session.mu.Unlock()

	return m.load(ctx, session, conv.ID)
}

// ListConversations returns the user's conversations, most recent first
func (m *Manager) ListConversations(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	convs, err := m.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// RenameConversation sets a conversation's title. A blank title becomes "Untitled chat".
func (m *Manager) RenameConversation(ctx context.Context, session *Session, id uuid.UUID, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledTitle
	}
	if err := m.conversations.UpdateTitle(ctx, session.UserID(), id, title); err != nil {
		return "", err
	}

	session.mu.Lock()
	if sameID(session.conversationID, &id) {
		session.title = &title
	}
	session.mu.Unlock()
	return title, nil
}

// DeleteConversation removes a conversation and its messages. Deleting the one
// on screen clears the session.
func (m *Manager) DeleteConversation(ctx context.Context, session *Session, id uuid.UUID) error {
	if err := m.conversations.Delete(ctx, session.UserID(), id); err != nil {
		return err
	}

	m.logger.Info("conversation_deleted",
		zap.String("user_id", session.UserID().String()),
		zap.String("conversation_id", id.String()))

	if sameID(session.ConversationID(), &id) {
		return m.ClearMessages(ctx, session)
	}
	return nil
}
