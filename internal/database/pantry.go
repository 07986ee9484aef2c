package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// PantryRepository handles pantry item database operations
type PantryRepository struct {
	db *DB
}

// NewPantryRepository creates a new pantry repository
func NewPantryRepository(db *DB) *PantryRepository {
	return &PantryRepository{db: db}
}

const insertPantryItem = `
	INSERT INTO pantry_items (id, user_id, ingredient_name, quantity, category, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
`

// Create inserts a pantry item
func (r *PantryRepository) Create(ctx context.Context, item *models.PantryItem) error {
	item.ID = uuid.New()
	err := r.db.QueryRowContext(ctx, insertPantryItem,
		item.ID,
		item.UserID,
		item.IngredientName,
		item.Quantity,
		item.Category,
		time.Now(),
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pantry item: %w", err)
	}
	return nil
}

// CreateIngredients adds a recipe's ingredients in one transaction, each with the
// default quantity and category. Blank and repeated names are skipped.
func (r *PantryRepository) CreateIngredients(ctx context.Context, userID uuid.UUID, ingredients []string) ([]*models.PantryItem, error) {
	names := UniqueIngredientNames(ingredients)
	items := make([]*models.PantryItem, 0, len(names))
	if len(names) == 0 {
		return items, nil
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertPantryItem)
		if err != nil {
			return fmt.Errorf("failed to prepare pantry insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		now := time.Now()
		for _, name := range names {
			quantity := models.DefaultIngredientQuantity
			category := models.DefaultIngredientCategory
			item := &models.PantryItem{
				ID:             uuid.New(),
				UserID:         userID,
				IngredientName: name,
				Quantity:       &quantity,
				Category:       &category,
			}
			if err := stmt.QueryRowContext(ctx, item.ID, item.UserID, item.IngredientName, item.Quantity, item.Category, now).Scan(&item.CreatedAt); err != nil {
				return fmt.Errorf("failed to add ingredient %q: %w", name, err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUserID returns pantry items, newest first
func (r *PantryRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PantryItem, error) {
	query := `
		SELECT id, user_id, ingredient_name, quantity, category, created_at
		FROM pantry_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*models.PantryItem, 0)
	for rows.Next() {
		item := &models.PantryItem{}
		var quantity, category sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.IngredientName, &quantity, &category, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		if quantity.Valid {
			item.Quantity = &quantity.String
		}
		if category.Valid {
			item.Category = &category.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pantry items: %w", err)
	}
	return items, nil
}

// Delete removes a pantry item owned by userID
func (r *PantryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pantry item not found: %w", sql.ErrNoRows)
	}
	return nil
}

// UniqueIngredientNames trims names and drops blanks and case-insensitive repeats, keeping order
func UniqueIngredientNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
