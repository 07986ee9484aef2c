// Package chat keeps each user's chat session in step with the conversation store:
// it owns the transcript, creates conversations on demand, runs one assistant
// reply per send, and schedules meals mentioned in the exchange.
package chat

import (
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// WelcomeID is the id of the canned greeting. As a conversation id it means
// "not backed by a stored conversation yet".
const WelcomeID = "welcome"

// WelcomeText greets the user when there is nothing else to show
const WelcomeText = "Hi there! I'm your Recipe & Meal Planning Assistant. How can I help you today? " +
	"You can ask for recipes, meal plans, or cooking tips!"

// Conversation titles used by the session lifecycle
const (
	NewConversationTitle = "New Conversation"
	UntitledTitle        = "Untitled chat"
)

// Message is one transcript entry as the client renders it
type Message struct {
	ID        string             `json:"id"`
	Role      models.MessageRole `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	IsLoading bool               `json:"isLoading,omitempty"`
}

// WelcomeMessage is never persisted
func WelcomeMessage(now time.Time) Message {
	return Message{ID: WelcomeID, Role: models.MessageRoleAssistant, Content: WelcomeText, Timestamp: now}
}

// FromStored converts a persisted row into a transcript entry
func FromStored(m *models.Message) Message {
	return Message{
		ID:        m.ID.String(),
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
}

// DefaultConversationTitle is the date-stamped title used for a conversation
// created before the user has said anything, e.g. "Chat on Apr 20, 2026".
func DefaultConversationTitle(now time.Time) string {
	return "Chat on " + now.Format("Jan 2, 2006")
}

// ParseConversationID reads a client-supplied id. Blank and the welcome sentinel
// both mean no conversation.
func ParseConversationID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == WelcomeID {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
