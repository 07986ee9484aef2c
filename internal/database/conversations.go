package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// ConversationRepository handles conversation database operations.
// Every method is scoped to the owning user.
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const conversationColumns = `id, user_id, title, created_at, updated_at`

func scanConversation(row interface{ Scan(dest ...any) error }) (*models.Conversation, error) {
	c := &models.Conversation{}
	var title sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if title.Valid {
		c.Title = &title.String
	}
	return c, nil
}

// Create inserts a conversation with the given title
func (r *ConversationRepository) Create(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING ` + conversationColumns

	now := time.Now()
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, uuid.New(), userID, title, now))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// GetLatestByUserID returns the most recently updated conversation
func (r *ConversationRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest conversation: %w", err)
	}
	return c, nil
}

// GetByID retrieves a conversation owned by userID
func (r *ConversationRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

// ListByUserID returns all conversations, most recently updated first
func (r *ConversationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	conversations := make([]*models.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return conversations, nil
}

// UpdateTitle renames a conversation
func (r *ConversationRepository) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error {
	query := `UPDATE conversations SET title = $3 WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, "update conversation title", query, id, userID, title)
}

// Touch bumps updated_at so the conversation sorts first
func (r *ConversationRepository) Touch(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE conversations SET updated_at = $3 WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, "update conversation timestamp", query, id, userID, time.Now())
}

// Delete removes a conversation; its messages go with it through the foreign key
func (r *ConversationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM conversations WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, "delete conversation", query, id, userID)
}

func (r *ConversationRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("conversation not found: %w", sql.ErrNoRows)
	}
	return nil
}
