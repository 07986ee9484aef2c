package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured
const DefaultGeminiModel = "gemini-1.5-pro"

// ErrNoTextInResponse is returned when Gemini answers without any text part
var ErrNoTextInResponse = errors.New("no text in response")

// GeminiProvider calls the Gemini API through the genai SDK
type GeminiProvider struct {
	client    *genai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewGeminiProvider creates a Gemini provider. baseURL is only set for proxies and tests.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) (*GeminiProvider, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}, nil
}

// Name implements AIProvider
func (p *GeminiProvider) Name() string { return "gemini" }

// toGeminiContents maps assistant turns to the "model" role. Gemini requires the
// history to open with a user turn, so leading assistant turns (the greeting) are dropped.
func toGeminiContents(messages []ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			if len(contents) == 0 {
				continue
			}
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

// Chat implements AIProvider
func (p *GeminiProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)

	contents := toGeminiContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("failed to chat: no user turn in history")
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("provider", p.Name()),
			zap.String("model", p.model),
			zap.Int("message_count", len(contents)),
			zap.Strings("message_previews", previews(messages)),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
		)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	}

	startTime := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	latency := time.Since(startTime)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("provider", p.Name()),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		var gErr genai.APIError
		if errors.As(err, &gErr) {
			return nil, fmt.Errorf("failed to chat: %w", &APIError{
				Message:     gErr.Message,
				Type:        gErr.Status,
				StatusCode:  gErr.Code,
				IsPermanent: gErr.Code != http.StatusTooManyRequests && gErr.Code < 500,
			})
		}
		return nil, fmt.Errorf("failed to chat: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrNoTextInResponse
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("provider", p.Name()),
			zap.String("model", p.model),
			zap.Int("response_length", len(text)),
			zap.String("response_preview", SanitizeResponse(text, true)),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return &ChatResponse{Message: text, Model: p.model}, nil
}

// RegisterGemini registers the Gemini provider with the registry
func RegisterGemini(registry *ProviderRegistry) {
	registry.Register("gemini", func(cfg ProviderConfig) (AIProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini api_key is required")
		}
		return NewGeminiProvider(context.Background(), cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Logger, cfg.Debug)
	})
}
