package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// MessageRepository handles chat message database operations
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores msg in a conversation owned by userID. A zero msg.ID gets a fresh uuid;
// otherwise the caller's id is kept so transcript entries and rows share identity.
func (r *MessageRepository) Create(ctx context.Context, userID uuid.UUID, msg *models.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("invalid message role: %q", msg.Role)
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}

	query := `
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM conversations WHERE id = $2 AND user_id = $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		string(msg.Role),
		msg.Content,
		time.Now(),
		userID,
	).Scan(&msg.CreatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("conversation not found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// ListByConversationID returns a conversation's messages in creation order
func (r *MessageRepository) ListByConversationID(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.role, m.content, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.conversation_id = $1 AND c.user_id = $2
		ORDER BY m.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		var role string
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = models.MessageRole(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}
