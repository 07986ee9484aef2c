package commands

import (
	"fmt"
	"os"

	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/benvon/cook-with-ai/internal/database"
)

// withDB loads configuration, opens the database for fn and closes it afterwards
func withDB(fn func(cfg *config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()
	return fn(cfg, db)
}
