package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// MealScheduleRepository handles meal calendar database operations
type MealScheduleRepository struct {
	db *DB
}

// NewMealScheduleRepository creates a new meal schedule repository
func NewMealScheduleRepository(db *DB) *MealScheduleRepository {
	return &MealScheduleRepository{db: db}
}

// Create inserts a scheduled meal. Existing meals in the same slot are left alone.
func (r *MealScheduleRepository) Create(ctx context.Context, item *models.MealScheduleItem) error {
	if _, err := time.Parse(models.MealDateLayout, item.Date); err != nil {
		return fmt.Errorf("invalid meal date %q: %w", item.Date, err)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `
		INSERT INTO meal_schedule (id, user_id, date, meal_type, recipe_id, recipe_name, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.UserID,
		item.Date,
		string(item.MealType),
		item.RecipeID,
		item.RecipeName,
		item.Notes,
		time.Now(),
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add meal to schedule: %w", err)
	}
	return nil
}

// ListByUserID returns scheduled meals ordered by date. The window applies only
// when both start and end are given, matching how the calendar asks for a month.
func (r *MealScheduleRepository) ListByUserID(ctx context.Context, userID uuid.UUID, start, end string) ([]*models.MealScheduleItem, error) {
	query := `
		SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), meal_type, recipe_id, recipe_name, notes, created_at
		FROM meal_schedule
		WHERE user_id = $1
	`
	args := []any{userID}

	from, to, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}
	if from != "" {
		query += ` AND date >= $2 AND date <= $3`
		args = append(args, from, to)
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal schedule: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*models.MealScheduleItem, 0)
	for rows.Next() {
		item := &models.MealScheduleItem{}
		var mealType string
		var notes sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.Date, &mealType, &item.RecipeID, &item.RecipeName, &notes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled meal: %w", err)
		}
		item.MealType = models.MealType(mealType)
		if notes.Valid {
			item.Notes = &notes.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal schedule: %w", err)
	}
	return items, nil
}

// Delete removes a scheduled meal owned by userID
func (r *MealScheduleRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meal_schedule WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled meal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scheduled meal not found: %w", sql.ErrNoRows)
	}
	return nil
}

// DateRange validates an optional calendar window. It returns empty bounds unless
// both are set, and rejects malformed days or an end before the start.
func DateRange(start, end string) (string, string, error) {
	if start == "" || end == "" {
		return "", "", nil
	}
	from, err := time.Parse(models.MealDateLayout, start)
	if err != nil {
		return "", "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse(models.MealDateLayout, end)
	if err != nil {
		return "", "", fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return "", "", fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return start, end, nil
}
