package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

type mockProvider struct {
	chatFunc func(ctx context.Context, messages []ChatMessage) (*ChatResponse, error)
	calls    int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	m.calls++
	return m.chatFunc(ctx, messages)
}

type mockMessageRepo struct {
	mu         sync.Mutex
	createFunc func(ctx context.Context, userID uuid.UUID, msg *models.Message) error
	created    []*models.Message
}

func (m *mockMessageRepo) Create(ctx context.Context, userID uuid.UUID, msg *models.Message) error {
	m.mu.Lock()
	m.created = append(m.created, msg)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, msg)
	}
	return nil
}

func (m *mockMessageRepo) ListByConversationID(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error) {
	return nil, nil
}

func reply(text string) func(context.Context, []ChatMessage) (*ChatResponse, error) {
	return func(context.Context, []ChatMessage) (*ChatResponse, error) {
		return &ChatResponse{Message: text}, nil
	}
}

func TestResponder_Respond(t *testing.T) {
	t.Parallel()

	history := []ChatMessage{{RoleAssistant, "Hi there!"}, {RoleUser, "Give me a recipe for pancakes"}}
	convID := uuid.New()

	tests := []struct {
		name        string
		turns       []ChatMessage
		chat        func(context.Context, []ChatMessage) (*ChatResponse, error)
		persist     bool
		convID      *uuid.UUID
		wantErr     error
		wantReply   string
		wantCalls   int
		wantStored  int
		storeErrors bool
	}{
		{name: "empty history", turns: nil, chat: reply("x"), wantErr: ErrInvalidHistory},
		{name: "bad role", turns: []ChatMessage{{"system", "x"}}, chat: reply("x"), wantErr: ErrInvalidHistory},
		{name: "reply", turns: history, chat: reply("Recipe for Pancakes: ..."), wantReply: "Recipe for Pancakes: ...", wantCalls: 1},
		{name: "blank reply", turns: history, chat: reply("  \n"), wantErr: ErrEmptyResponse, wantCalls: 1},
		{
			name:      "provider error",
			turns:     history,
			chat:      func(context.Context, []ChatMessage) (*ChatResponse, error) { return nil, errors.New("boom") },
			wantErr:   errors.New("boom"),
			wantCalls: 1,
		},
		{name: "persists with conversation", turns: history, chat: reply("ok"), persist: true, convID: &convID, wantReply: "ok", wantCalls: 1, wantStored: 2},
		{name: "no conversation id", turns: history, chat: reply("ok"), persist: true, wantReply: "ok", wantCalls: 1},
		{name: "store failure ignored", turns: history, chat: reply("ok"), persist: true, convID: &convID, storeErrors: true, wantReply: "ok", wantCalls: 1, wantStored: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			provider := &mockProvider{chatFunc: tt.chat}
			repo := &mockMessageRepo{}
			if tt.storeErrors {
				repo.createFunc = func(context.Context, uuid.UUID, *models.Message) error { return errors.New("db down") }
			}
			opts := []ResponderOption{WithMetrics(metrics.New())}
			if tt.persist {
				opts = append(opts, WithPersistence(repo))
			}
			r := NewResponder(provider, nil, opts...)

			got, err := r.Respond(context.Background(), uuid.New(), tt.turns, tt.convID)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v", tt.wantErr)
				}
				if (tt.wantErr == ErrInvalidHistory || tt.wantErr == ErrEmptyResponse) && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantReply {
				t.Errorf("reply = %q, want %q", got, tt.wantReply)
			}
			if provider.calls != tt.wantCalls {
				t.Errorf("provider calls = %d, want %d", provider.calls, tt.wantCalls)
			}
			if len(repo.created) != tt.wantStored {
				t.Fatalf("stored %d messages, want %d", len(repo.created), tt.wantStored)
			}
			if tt.wantStored == 2 {
				if repo.created[0].Role != models.MessageRoleUser || repo.created[0].Content != "Give me a recipe for pancakes" {
					t.Errorf("first stored message = %+v, want last user turn", repo.created[0])
				}
				if repo.created[1].Role != models.MessageRoleAssistant || repo.created[1].Content != "ok" {
					t.Errorf("second stored message = %+v, want reply", repo.created[1])
				}
			}
		})
	}
}
