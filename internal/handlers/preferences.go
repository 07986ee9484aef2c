package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/preferences"
	"github.com/benvon/cook-with-ai/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PreferencesService loads and saves preferences
type PreferencesService interface {
	Load(ctx context.Context, userID uuid.UUID) (models.UserPreferences, error)
	Update(current models.UserPreferences, patch models.PreferencesPatch) (models.UserPreferences, error)
	Save(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) (models.Notification, error)
}

var _ PreferencesService = (*preferences.Manager)(nil)

// PreferencesHandler handles preference requests
type PreferencesHandler struct {
	prefs  PreferencesService
	logger *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(prefs PreferencesService, logger *zap.Logger) *PreferencesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesHandler{prefs: prefs, logger: logger}
}

// RegisterRoutes registers preference routes. The router should already have the /preferences prefix.
func (h *PreferencesHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetPreferences).Methods("GET")
	r.HandleFunc("", h.UpdatePreferences).Methods("PUT")
}

// PreferencesResponse carries the effective preferences and, after a save, the notification to show
type PreferencesResponse struct {
	Preferences  models.UserPreferences `json:"preferences"`
	Notification *models.Notification   `json:"notification,omitempty"`
}

// GetPreferences returns the profile preferences merged over the defaults.
// Anonymous callers get the defaults.
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := uuid.Nil
	if user := request.UserFromContext(r); user != nil {
		userID = user.ID
	}

	prefs, err := h.prefs.Load(r.Context(), userID)
	if err != nil {
		h.logger.Error("preferences_load_failed", zap.String("user_id", userID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load preferences")
		return
	}
	respondJSON(w, http.StatusOK, PreferencesResponse{Preferences: prefs})
}

// UpdatePreferences applies a partial update and saves it to the profile
func (h *PreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var patch models.PreferencesPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	current, err := h.prefs.Load(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("preferences_load_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load preferences")
		return
	}
	updated, err := h.prefs.Update(current, patch)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	notice, err := h.prefs.Save(r.Context(), user.ID, updated)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, notice.Title, notice.Description)
		return
	}
	respondJSON(w, http.StatusOK, PreferencesResponse{Preferences: updated, Notification: &notice})
}
