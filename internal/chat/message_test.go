package chat

import (
	"testing"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

func TestFromStored(t *testing.T) {
	t.Parallel()

	row := &models.Message{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		Role:           models.MessageRoleAssistant,
		Content:        "Roast the squash at 200C for 40 minutes.",
		CreatedAt:      time.Date(2026, time.April, 20, 18, 30, 0, 0, time.UTC),
	}

	got := FromStored(row)
	want := Message{ID: row.ID.String(), Role: row.Role, Content: row.Content, Timestamp: row.CreatedAt}
	if got != want {
		t.Errorf("FromStored() = %+v, want %+v", got, want)
	}
}
