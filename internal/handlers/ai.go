package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/cook-with-ai/internal/chat"
	"github.com/benvon/cook-with-ai/internal/services/ai"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AIResponder produces one assistant reply
type AIResponder interface {
	Respond(ctx context.Context, userID uuid.UUID, turns []ai.ChatMessage, conversationID *uuid.UUID) (string, error)
}

// AIHandler exposes the responder directly
type AIHandler struct {
	responder AIResponder
	logger    *zap.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(responder AIResponder, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{responder: responder, logger: logger}
}

// RegisterRoutes registers AI routes. The router should already have the /ai prefix.
func (h *AIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/respond", h.Respond).Methods("POST")
}

// RespondRequest is the turn list to answer
type RespondRequest struct {
	Messages       []ai.ChatMessage `json:"messages"`
	ConversationID string           `json:"conversationId,omitempty" validate:"max=64"`
}

// RespondResponse is the assistant's reply
type RespondResponse struct {
	Response string `json:"response"`
}

// Respond answers a turn list. Malformed histories get 400.
func (h *AIHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req RespondRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := ai.ValidateHistory(req.Messages); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	conversationID, err := chat.ParseConversationID(req.ConversationID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid conversationId")
		return
	}

	reply, err := h.responder.Respond(r.Context(), user.ID, req.Messages, conversationID)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidHistory) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to get a response from the assistant")
		return
	}
	respondJSON(w, http.StatusOK, RespondResponse{Response: reply})
}
