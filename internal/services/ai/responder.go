package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Responder turns a chat history into one assistant reply. It makes a single
// provider call per request and never retries.
type Responder struct {
	provider AIProvider
	messages database.MessageRepositoryInterface
	logger   *zap.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// ResponderOption configures a Responder
type ResponderOption func(*Responder)

// WithPersistence stores the last user turn and the reply whenever a conversation id is given
func WithPersistence(messages database.MessageRepositoryInterface) ResponderOption {
	return func(r *Responder) { r.messages = messages }
}

// WithMetrics records provider latency and outcomes
func WithMetrics(m *metrics.Metrics) ResponderOption {
	return func(r *Responder) { r.metrics = m }
}

// NewResponder creates a responder around provider
func NewResponder(provider AIProvider, logger *zap.Logger, opts ...ResponderOption) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Responder{
		provider: provider,
		logger:   logger,
		tracer:   otel.Tracer("github.com/benvon/cook-with-ai/internal/services/ai"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateHistory checks a turn list before it is sent to a provider
func ValidateHistory(turns []ChatMessage) error {
	if len(turns) == 0 {
		return ErrInvalidHistory
	}
	for i, t := range turns {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidHistory, i, t.Role)
		}
	}
	return nil
}

// Respond returns the assistant's reply to turns. When persistence is enabled and
// conversationID is set, the last user turn and the reply are stored as well;
// those writes are best effort and never fail the request.
func (r *Responder) Respond(ctx context.Context, userID uuid.UUID, turns []ChatMessage, conversationID *uuid.UUID) (string, error) {
	if err := ValidateHistory(turns); err != nil {
		return "", err
	}

	ctx = WithUserID(ctx, userID)
	if conversationID != nil {
		ctx = WithConversationID(ctx, *conversationID)
	}

	ctx, span := r.tracer.Start(ctx, "ai.respond", trace.WithAttributes(
		attribute.String("ai.provider", r.provider.Name()),
		attribute.Int("ai.turns", len(turns)),
	))
	defer span.End()

	start := time.Now()
	resp, err := r.provider.Chat(ctx, turns)
	latency := time.Since(start)

	if err == nil && (resp == nil || strings.TrimSpace(resp.Message) == "") {
		err = ErrEmptyResponse
	}
	r.metrics.ObserveAI(r.provider.Name(), err, latency)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		r.logger.Error("ai_response_failed",
			zap.String("provider", r.provider.Name()),
			zap.String("user_id", userID.String()),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.Bool("rate_limited", IsRateLimitError(err)),
			zap.Bool("quota_exceeded", IsQuotaError(err)),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get response from %s: %w", r.provider.Name(), err)
	}

	r.logger.Info("ai_response_received",
		zap.String("provider", r.provider.Name()),
		zap.String("model", resp.Model),
		zap.String("user_id", userID.String()),
		zap.Int("response_length", len(resp.Message)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	if r.messages != nil && conversationID != nil {
		r.persist(ctx, userID, *conversationID, turns[len(turns)-1], resp.Message)
	}

	return resp.Message, nil
}

func (r *Responder) persist(ctx context.Context, userID, conversationID uuid.UUID, last ChatMessage, reply string) {
	stored := []*models.Message{
		{ConversationID: conversationID, Role: models.MessageRole(last.Role), Content: last.Content},
		{ConversationID: conversationID, Role: models.MessageRoleAssistant, Content: reply},
	}
	for _, msg := range stored {
		if err := r.messages.Create(ctx, userID, msg); err != nil {
			r.logger.Warn("ai_response_persist_failed",
				zap.String("conversation_id", conversationID.String()),
				zap.String("role", string(msg.Role)),
				zap.Error(err),
			)
		}
	}
}
