package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/google/uuid"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert records the user behind a verified token. The row id is the token subject,
// so the first authenticated request creates it and later ones refresh email and name.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = COALESCE(EXCLUDED.name, users.name),
			updated_at = CASE
				WHEN users.email IS DISTINCT FROM EXCLUDED.email
					OR (EXCLUDED.name IS NOT NULL AND users.name IS DISTINCT FROM EXCLUDED.name)
				THEN EXCLUDED.updated_at
				ELSE users.updated_at
			END
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		time.Now(),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	var name sql.NullString
	var prefs []byte
	query := `
		SELECT id, email, name, preferences, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&name,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if name.Valid {
		user.Name = &name.String
	}
	if user.Preferences, err = decodePreferences(prefs); err != nil {
		return nil, err
	}
	return user, nil
}

// GetPreferences returns the stored preferences, or nil when none were saved
func (r *UserRepository) GetPreferences(ctx context.Context, id uuid.UUID) (*models.UserPreferences, error) {
	var prefs []byte
	err := r.db.QueryRowContext(ctx, `SELECT preferences FROM users WHERE id = $1`, id).Scan(&prefs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return decodePreferences(prefs)
}

// UpdatePreferences replaces the stored preferences document
func (r *UserRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET preferences = $2, updated_at = $3 WHERE id = $1`,
		id, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return nil
}

func decodePreferences(raw []byte) (*models.UserPreferences, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	// Start from defaults so documents written before a field existed still read cleanly.
	prefs := models.DefaultPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return &prefs, nil
}
