package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/services/ai"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Responder produces one assistant reply for a turn list
type Responder interface {
	Respond(ctx context.Context, userID uuid.UUID, turns []ai.ChatMessage, conversationID *uuid.UUID) (string, error)
}

var _ Responder = (*ai.Responder)(nil)

// MessageHandler runs the send cycle: optimistic transcript update, store
// writes, one assistant call and the meal-plan pass.
type MessageHandler struct {
	conversations database.ConversationRepositoryInterface
	messages      database.MessageRepositoryInterface
	responder     Responder
	planner       *MealPlanner
	guard         SendGuard
	logger        *zap.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	now           func() time.Time
}

// HandlerOption configures a MessageHandler
type HandlerOption func(*MessageHandler)

// WithSendGuard shares the one-send-at-a-time rule beyond this process
func WithSendGuard(g SendGuard) HandlerOption {
	return func(h *MessageHandler) { h.guard = g }
}

// WithMealPlanner enables meal extraction after each reply
func WithMealPlanner(p *MealPlanner) HandlerOption {
	return func(h *MessageHandler) { h.planner = p }
}

// WithHandlerMetrics records send outcomes
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *MessageHandler) { h.metrics = m }
}

// NewMessageHandler creates a message handler
func NewMessageHandler(
	conversations database.ConversationRepositoryInterface,
	messages database.MessageRepositoryInterface,
	responder Responder,
	logger *zap.Logger,
	opts ...HandlerOption,
) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &MessageHandler{
		conversations: conversations,
		messages:      messages,
		responder:     responder,
		logger:        logger,
		tracer:        otel.Tracer("github.com/benvon/cook-with-ai/internal/chat"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SendMessage adds content to the session as a user message and fills in the
// assistant reply. Blank content and anonymous sessions are ignored (nil, nil).
// A send while another is running returns ErrProcessing and changes nothing.
//
// The user message stays in the transcript on every error path; only the
// loading placeholder is removed. Store writes that fail after the transcript
// changed are logged and surfaced as a single notification.
func (h *MessageHandler) SendMessage(ctx context.Context, session *Session, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" || !session.Authenticated() {
		return nil, nil
	}
	userID := session.UserID()

	session.mu.Lock()
	if session.processing {
		session.mu.Unlock()
		h.metrics.RecordSend(metrics.SendBusy)
		return nil, ErrProcessing
	}
	session.processing = true
	session.touch()
	session.mu.Unlock()

	acquired := false
	if h.guard != nil {
		ok, err := h.guard.Acquire(ctx, userID)
		switch {
		case err != nil:
			// Guard store unavailable; the session flag still serialises this instance
			h.logger.Warn("send_guard_unavailable", zap.String("user_id", userID.String()), zap.Error(err))
		case !ok:
			session.mu.Lock()
			session.processing = false
			session.mu.Unlock()
			h.metrics.RecordSend(metrics.SendBusy)
			return nil, ErrProcessing
		default:
			acquired = true
		}
	}

	defer func() {
		if acquired {
			if err := h.guard.Release(context.WithoutCancel(ctx), userID); err != nil {
				h.logger.Warn("send_guard_release_failed", zap.String("user_id", userID.String()), zap.Error(err))
			}
		}
		session.mu.Lock()
		session.processing = false
		session.touch()
		session.mu.Unlock()
	}()

	ctx, span := h.tracer.Start(ctx, "chat.send_message", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.Int("content_length", len(content)),
	))
	defer span.End()

	reply, err := h.send(ctx, session, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		var convErr *ConversationError
		if errors.As(err, &convErr) {
			h.metrics.RecordSend(metrics.SendConversationError)
		} else {
			h.metrics.RecordSend(metrics.SendResponseError)
		}
		return nil, err
	}
	h.metrics.RecordSend(metrics.SendOK)

	if h.planner != nil {
		h.planner.Plan(ctx, session, content, reply.Content)
	}
	return reply, nil
}

func (h *MessageHandler) send(ctx context.Context, session *Session, content string) (*Message, error) {
	userID := session.UserID()
	now := h.now()

	userMsg := Message{ID: uuid.NewString(), Role: models.MessageRoleUser, Content: content, Timestamp: now}
	placeholder := Message{ID: uuid.NewString(), Role: models.MessageRoleAssistant, Timestamp: now, IsLoading: true}

	session.mu.Lock()
	history := append(session.transcript.Messages(), userMsg)
	session.transcript.Append(userMsg)
	session.transcript.Append(placeholder)
	convID := copyID(session.conversationID)
	session.mu.Unlock()

	if convID == nil {
		conv, err := h.conversations.Create(ctx, userID, content)
		if err != nil {
			h.logger.Error("conversation_create_failed", zap.String("user_id", userID.String()), zap.Error(err))
			h.fail(session, placeholder.ID)
			return nil, &ConversationError{Op: "create", Err: err}
		}
		title := content
		session.mu.Lock()
		session.setConversation(&conv.ID, &title)
		session.mu.Unlock()
		convID = &conv.ID
	}

	var persistErrs []error
	persist := func(op string, err error) {
		if err == nil {
			return
		}
		h.logger.Error("chat_persist_failed",
			zap.String("operation", op),
			zap.String("user_id", userID.String()),
			zap.String("conversation_id", convID.String()),
			zap.Error(err))
		h.metrics.RecordPersistenceFailure(op)
		persistErrs = append(persistErrs, &PersistenceError{Op: op, Err: err})
	}

	persist("touch_conversation", h.conversations.Touch(ctx, userID, *convID))
	persist("save_user_message", h.messages.Create(ctx, userID, &models.Message{
		ID:             uuid.MustParse(userMsg.ID),
		ConversationID: *convID,
		Role:           models.MessageRoleUser,
		Content:        content,
	}))

	turns := make([]ai.ChatMessage, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	// This handler stores both sides itself, so the responder gets no conversation id
	replyText, err := h.responder.Respond(ctx, userID, turns, nil)
	if err == nil && strings.TrimSpace(replyText) == "" {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		h.fail(session, placeholder.ID)
		h.notifyPersistence(session, persistErrs)
		return nil, &ResponseError{Err: err}
	}

	persist("save_assistant_message", h.messages.Create(ctx, userID, &models.Message{
		ID:             uuid.MustParse(placeholder.ID),
		ConversationID: *convID,
		Role:           models.MessageRoleAssistant,
		Content:        replyText,
	}))

	session.mu.Lock()
	needsTitle := session.title == nil && sameID(session.conversationID, convID)
	session.mu.Unlock()
	if needsTitle {
		persist("update_title", h.conversations.UpdateTitle(ctx, userID, *convID, content))
		title := content
		session.mu.Lock()
		if sameID(session.conversationID, convID) {
			session.title = &title
		}
		session.mu.Unlock()
	}

	final := placeholder
	final.Content = replyText
	final.IsLoading = false

	session.mu.Lock()
	updated := session.transcript.Update(placeholder.ID, func(m *Message) {
		m.Content = final.Content
		m.IsLoading = false
	})
	session.mu.Unlock()
	if !updated {
		// Cleared or switched while the model was answering; the reply is stored but not shown
		h.logger.Info("chat_transcript_moved_on",
			zap.String("user_id", userID.String()),
			zap.String("conversation_id", convID.String()))
	}

	h.notifyPersistence(session, persistErrs)
	return &final, nil
}

// fail drops the placeholder and tells the user the send did not go through
func (h *MessageHandler) fail(session *Session, placeholderID string) {
	session.mu.Lock()
	session.transcript.Remove(placeholderID)
	session.notifications = append(session.notifications, models.NewErrorNotification("Error", SendFailedText))
	session.mu.Unlock()
}

func (h *MessageHandler) notifyPersistence(session *Session, errs []error) {
	if len(errs) == 0 {
		return
	}
	session.Notify(models.NewErrorNotification("Error", SaveFailedText))
}
