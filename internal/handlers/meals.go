package handlers

import (
	"net/http"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MealHandler handles meal calendar requests
type MealHandler struct {
	meals  database.MealScheduleRepositoryInterface
	logger *zap.Logger
}

// NewMealHandler creates a new meal handler
func NewMealHandler(meals database.MealScheduleRepositoryInterface, logger *zap.Logger) *MealHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealHandler{meals: meals, logger: logger}
}

// RegisterRoutes registers meal routes. The router should already have the /meals prefix.
func (h *MealHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMeals).Methods("GET")
	r.HandleFunc("", h.AddMeal).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteMeal).Methods("DELETE")
}

// AddMealRequest places a recipe on the calendar
type AddMealRequest struct {
	Date       string  `json:"date" validate:"required,meal_date"`
	MealType   string  `json:"meal_type" validate:"required,meal_type"`
	RecipeID   string  `json:"recipe_id" validate:"required,max=200"`
	RecipeName string  `json:"recipe_name" validate:"required,max=200"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListMeals lists scheduled meals by date. start and end filter only when both are given.
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	start, end, err := database.DateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	items, err := h.meals.ListByUserID(r.Context(), user.ID, start, end)
	if err != nil {
		h.logger.Error("meal_list_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve meals")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// AddMeal schedules a meal. The same recipe may be planned twice for one slot.
func (h *MealHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req AddMealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.RecipeName = validation.SanitizeText(req.RecipeName)
	if req.RecipeName == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "recipe_name cannot be empty")
		return
	}

	item := &models.MealScheduleItem{
		UserID:     user.ID,
		Date:       req.Date,
		MealType:   models.MealType(req.MealType),
		RecipeID:   req.RecipeID,
		RecipeName: req.RecipeName,
		Notes:      req.Notes,
	}
	if err := h.meals.Create(r.Context(), item); err != nil {
		h.logger.Error("meal_add_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to schedule meal")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// DeleteMeal removes a scheduled meal
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.meals.Delete(r.Context(), user.ID, id); err != nil {
		respondStoreError(w, err, "scheduled meal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
