package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/benvon/cook-with-ai/internal/chat"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ConversationHandler handles the conversation list
type ConversationHandler struct {
	sessions *chat.SessionStore
	manager  *chat.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(sessions *chat.SessionStore, manager *chat.Manager, logger *zap.Logger) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{sessions: sessions, manager: manager, logger: logger, now: time.Now}
}

// RegisterRoutes registers conversation routes. The router should already have the /conversations prefix.
func (h *ConversationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListConversations).Methods("GET")
	r.HandleFunc("/title", h.SuggestTitle).Methods("POST")
	r.HandleFunc("/{id}", h.RenameConversation).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteConversation).Methods("DELETE")
}

// RenameConversationRequest sets a title; blank becomes "Untitled chat"
type RenameConversationRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// SuggestTitleRequest is the first message of a conversation
type SuggestTitleRequest struct {
	Message string `json:"message" validate:"max=10000"`
}

// ListConversations lists the user's conversations, most recent first
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	convs, err := h.manager.ListConversations(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("conversation_list_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve conversations")
		return
	}
	respondJSON(w, http.StatusOK, convs)
}

// RenameConversation updates a title. The open session picks it up if it shows that conversation.
func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RenameConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.manager.RenameConversation(r.Context(), h.sessions.Get(user.ID), id, req.Title)
	if err != nil {
		respondStoreError(w, err, "conversation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id.String(), "title": title})
}

// DeleteConversation removes a conversation and its messages
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	session := h.sessions.Get(user.ID)
	if err := h.manager.DeleteConversation(r.Context(), session, id); err != nil {
		var convErr *chat.ConversationError
		if errors.As(err, &convErr) {
			// Deleted, but the replacement conversation could not be created
			h.logger.Warn("conversation_replace_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
			respondJSON(w, http.StatusOK, session.Snapshot(true))
			return
		}
		respondStoreError(w, err, "conversation")
		return
	}
	respondJSON(w, http.StatusOK, session.Snapshot(true))
}

// SuggestTitle derives a title from a first message
func (h *ConversationHandler) SuggestTitle(w http.ResponseWriter, r *http.Request) {
	var req SuggestTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"title": chat.GenerateConversationTitle(req.Message, h.now())})
}
