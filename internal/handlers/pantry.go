package handlers

import (
	"net/http"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PantryHandler handles pantry requests
type PantryHandler struct {
	pantry database.PantryRepositoryInterface
	logger *zap.Logger
}

// NewPantryHandler creates a new pantry handler
func NewPantryHandler(pantry database.PantryRepositoryInterface, logger *zap.Logger) *PantryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PantryHandler{pantry: pantry, logger: logger}
}

// RegisterRoutes registers pantry routes. The router should already have the /pantry prefix.
func (h *PantryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListItems).Methods("GET")
	r.HandleFunc("", h.AddItem).Methods("POST")
	r.HandleFunc("/bulk", h.AddIngredients).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteItem).Methods("DELETE")
}

// AddPantryItemRequest adds one ingredient
type AddPantryItemRequest struct {
	IngredientName string  `json:"ingredient_name" validate:"required,max=200"`
	Quantity       *string `json:"quantity,omitempty" validate:"omitempty,max=100"`
	Category       *string `json:"category,omitempty" validate:"omitempty,max=100"`
}

// AddIngredientsRequest adds a recipe's ingredients in one go
type AddIngredientsRequest struct {
	Ingredients []string `json:"ingredients" validate:"required,min=1,max=100,dive,max=200"`
}

// ListItems lists the user's pantry, newest first
func (h *PantryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	items, err := h.pantry.ListByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("pantry_list_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve pantry")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// AddItem adds one pantry item
func (h *PantryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req AddPantryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.IngredientName = validation.SanitizeText(req.IngredientName)
	if req.IngredientName == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "ingredient_name cannot be empty")
		return
	}

	item := &models.PantryItem{
		UserID:         user.ID,
		IngredientName: req.IngredientName,
		Quantity:       req.Quantity,
		Category:       req.Category,
	}
	if err := h.pantry.Create(r.Context(), item); err != nil {
		h.logger.Error("pantry_add_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to add pantry item")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// AddIngredients adds each ingredient with quantity "1" and category "Other"
func (h *PantryHandler) AddIngredients(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req AddIngredientsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	for i, name := range req.Ingredients {
		req.Ingredients[i] = validation.SanitizeText(name)
	}

	items, err := h.pantry.CreateIngredients(r.Context(), user.ID, req.Ingredients)
	if err != nil {
		h.logger.Error("pantry_bulk_add_failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to add ingredients")
		return
	}
	respondJSON(w, http.StatusCreated, items)
}

// DeleteItem removes a pantry item
func (h *PantryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.pantry.Delete(r.Context(), user.ID, id); err != nil {
		respondStoreError(w, err, "pantry item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
