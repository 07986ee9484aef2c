package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/benvon/cook-with-ai/internal/chat"
	"github.com/benvon/cook-with-ai/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ChatHandler exposes the per-user chat session over HTTP. Failures the session
// already reports as notifications come back as a normal snapshot.
type ChatHandler struct {
	sessions *chat.SessionStore
	manager  *chat.Manager
	messages *chat.MessageHandler
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions *chat.SessionStore, manager *chat.Manager, messages *chat.MessageHandler, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{sessions: sessions, manager: manager, messages: messages, logger: logger}
}

// RegisterRoutes registers chat routes. The router should already have the /chat prefix.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/session", h.InitSession).Methods("POST")
	r.HandleFunc("/session", h.GetSession).Methods("GET")
	r.HandleFunc("/session/conversation", h.SelectConversation).Methods("PUT")
	r.HandleFunc("/session/messages", h.ClearMessages).Methods("DELETE")
	r.HandleFunc("/messages", h.SendMessage).Methods("POST")
}

// SelectConversationRequest switches the session to another conversation.
// An empty id or "welcome" returns to the greeting.
type SelectConversationRequest struct {
	ConversationID string `json:"conversationId" validate:"max=64"`
}

// SendMessageRequest is one user message
type SendMessageRequest struct {
	Content string `json:"content" validate:"max=10000"`
}

// SendMessageResponse carries the reply (nil when nothing was sent) and the session after the send
type SendMessageResponse struct {
	Message *chat.Message `json:"message"`
	Session chat.Snapshot `json:"session"`
}

// session returns the caller's session. Anonymous callers get a throwaway one.
func (h *ChatHandler) session(r *http.Request) *chat.Session {
	user := request.UserFromContext(r)
	if user == nil {
		return chat.NewSession(uuid.Nil)
	}
	return h.sessions.Get(user.ID)
}

func (h *ChatHandler) logFailure(event string, session *chat.Session, err error) {
	h.logger.Warn(event, zap.String("user_id", session.UserID().String()), zap.Error(err))
}

// InitSession loads the latest conversation, creating one if the user has none
func (h *ChatHandler) InitSession(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if err := h.manager.Initialize(r.Context(), session); err != nil {
		h.logFailure("chat_session_init_failed", session, err)
	}
	respondJSON(w, http.StatusOK, session.Snapshot(true))
}

// GetSession returns the current snapshot and hands over pending notifications
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session(r).Snapshot(true))
}

// SelectConversation switches conversations
func (h *ChatHandler) SelectConversation(w http.ResponseWriter, r *http.Request) {
	var req SelectConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := chat.ParseConversationID(req.ConversationID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid conversationId")
		return
	}

	session := h.session(r)
	if err := h.manager.SelectConversation(r.Context(), session, id); err != nil {
		h.logFailure("chat_conversation_select_failed", session, err)
	}
	respondJSON(w, http.StatusOK, session.Snapshot(true))
}

// ClearMessages starts a new conversation
func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if err := h.manager.ClearMessages(r.Context(), session); err != nil {
		h.logFailure("chat_clear_failed", session, err)
	}
	respondJSON(w, http.StatusOK, session.Snapshot(true))
}

// SendMessage runs one send cycle. A send while another is running gets 409.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := h.session(r)
	start := time.Now()
	reply, err := h.messages.SendMessage(r.Context(), session, req.Content)
	if errors.Is(err, chat.ErrProcessing) {
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
		return
	}
	if err != nil {
		h.logFailure("chat_send_failed", session, err)
	} else if reply != nil {
		h.logger.Debug("chat_send_completed",
			zap.String("user_id", session.UserID().String()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}

	respondJSON(w, http.StatusOK, SendMessageResponse{Message: reply, Session: session.Snapshot(true)})
}
