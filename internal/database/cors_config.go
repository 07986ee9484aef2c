package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/benvon/cook-with-ai/internal/models"
)

// The server keeps a single policy row.
const corsPolicyKey = "default"

// CorsConfigRepository stores the browser origins allowed to call the API.
type CorsConfigRepository struct {
	db *DB
}

// NewCorsConfigRepository creates a new CORS config repository.
func NewCorsConfigRepository(db *DB) *CorsConfigRepository {
	return &CorsConfigRepository{db: db}
}

// Get returns the stored policy, or nil when none has been configured.
func (r *CorsConfigRepository) Get(ctx context.Context) (*models.CorsConfig, error) {
	var policy models.CorsConfig
	err := r.db.QueryRowContext(ctx,
		`SELECT config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at
		   FROM cors_config WHERE config_key = $1`,
		corsPolicyKey,
	).Scan(&policy.ConfigKey, &policy.AllowedOrigins, &policy.AllowCredentials, &policy.MaxAge, &policy.CreatedAt, &policy.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read cors policy: %w", err)
	}
	return &policy, nil
}

// Set stores the policy with its origins normalised, filling in the key and timestamps.
func (r *CorsConfigRepository) Set(ctx context.Context, c *models.CorsConfig) error {
	origins := AllowedOriginsSlice(c.AllowedOrigins)
	if len(origins) == 0 {
		return errors.New("at least one allowed origin is required")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("max age %d is negative", c.MaxAge)
	}
	c.ConfigKey = corsPolicyKey
	c.AllowedOrigins = strings.Join(origins, ",")

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cors_config (config_key, allowed_origins, allow_credentials, max_age)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (config_key) DO UPDATE
		    SET allowed_origins = EXCLUDED.allowed_origins,
		        allow_credentials = EXCLUDED.allow_credentials,
		        max_age = EXCLUDED.max_age,
		        updated_at = now()
		 RETURNING created_at, updated_at`,
		c.ConfigKey, c.AllowedOrigins, c.AllowCredentials, c.MaxAge,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save cors policy: %w", err)
	}
	return nil
}

// Reset removes the stored policy so servers fall back to FRONTEND_URL.
// It reports whether a policy existed.
func (r *CorsConfigRepository) Reset(ctx context.Context) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cors_config WHERE config_key = $1`, corsPolicyKey)
	if err != nil {
		return false, fmt.Errorf("failed to reset cors policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to reset cors policy: %w", err)
	}
	return n > 0, nil
}

// AllowedOriginsSlice splits a comma separated origin list, dropping blanks,
// trailing slashes and duplicates.
func AllowedOriginsSlice(raw string) []string {
	var origins []string
	for part := range strings.SplitSeq(raw, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" || slices.Contains(origins, origin) {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
