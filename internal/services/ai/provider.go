package ai

import (
	"context"

	"go.uber.org/zap"
)

// Roles accepted in a turn list
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AIProvider is the interface for AI providers
type AIProvider interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// Chat sends the whole turn list and returns one complete reply
	Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error)
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatResponse represents a response from the AI chat
type ChatResponse struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ProviderConfig carries the settings a factory needs
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
	Debug   bool
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(cfg ProviderConfig) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry returns a registry with every built-in provider registered
func NewDefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	RegisterGemini(r)
	RegisterOpenAI(r)
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, cfg ProviderConfig) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(cfg)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// SystemPrompt frames every conversation as the cooking assistant
const SystemPrompt = "You are a friendly Recipe & Meal Planning Assistant. Help the user with recipes, " +
	"meal plans, ingredient substitutions and cooking tips. When you suggest a dish, " +
	"introduce it as \"Recipe for <dish name>:\" followed by ingredients and steps."
