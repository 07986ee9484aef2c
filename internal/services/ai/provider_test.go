package ai

import (
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	if _, err := r.GetProvider("claude", ProviderConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	} else {
		var notFound *ErrProviderNotFound
		if !errors.As(err, &notFound) || notFound.Name != "claude" {
			t.Errorf("expected ErrProviderNotFound{claude}, got %v", err)
		}
	}

	for _, name := range []string{"gemini", "openai"} {
		if _, err := r.GetProvider(name, ProviderConfig{}); err == nil {
			t.Errorf("%s: expected error without api key", name)
		}
	}

	p, err := r.GetProvider("openai", ProviderConfig{APIKey: "sk-test", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", p.Name())
	}
}

func TestToGeminiContents(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		messages  []ChatMessage
		wantRoles []string
	}{
		{
			name:     "drops leading greeting",
			messages: []ChatMessage{{RoleAssistant, "Hi there!"}, {RoleUser, "pasta ideas?"}},
			wantRoles: []string{
				string(genai.RoleUser),
			},
		},
		{
			name: "maps assistant to model",
			messages: []ChatMessage{
				{RoleUser, "a"}, {RoleAssistant, "b"}, {RoleUser, "c"},
			},
			wantRoles: []string{string(genai.RoleUser), string(genai.RoleModel), string(genai.RoleUser)},
		},
		{
			name:      "only greeting",
			messages:  []ChatMessage{{RoleAssistant, "Hi there!"}},
			wantRoles: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := toGeminiContents(tt.messages)
			if len(got) != len(tt.wantRoles) {
				t.Fatalf("got %d contents, want %d", len(got), len(tt.wantRoles))
			}
			for i, c := range got {
				if c.Role != tt.wantRoles[i] {
					t.Errorf("content %d role = %q, want %q", i, c.Role, tt.wantRoles[i])
				}
			}
		})
	}
}

func TestToOpenAIMessages(t *testing.T) {
	t.Parallel()
	got := toOpenAIMessages([]ChatMessage{{RoleAssistant, "Hi"}, {RoleUser, "soup?"}})
	if len(got) != 3 {
		t.Fatalf("got %d messages, want system + 2", len(got))
	}
	if got[0].OfSystem == nil {
		t.Error("first message should be the system prompt")
	}
	if got[1].OfAssistant == nil || got[2].OfUser == nil {
		t.Error("roles were not mapped one to one")
	}
}
