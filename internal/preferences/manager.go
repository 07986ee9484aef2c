package preferences

import (
	"context"
	"fmt"

	"github.com/benvon/cook-with-ai/internal/database"
	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/benvon/cook-with-ai/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification texts for Save
const (
	SavedText      = "Your preferences have been saved."
	SaveFailedText = "Failed to save preferences. Please try again."
)

// Manager reconciles the local copy with the account profile.
// Either side may be nil: the server has no local file and the CLI may run signed out.
type Manager struct {
	local  *FileStore
	users  database.UserRepositoryInterface
	logger *zap.Logger
}

// NewManager creates a preferences manager
func NewManager(local *FileStore, users database.UserRepositoryInterface, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{local: local, users: users, logger: logger}
}

// Load returns the effective preferences. Anonymous callers read the local copy.
// Signed-in users read their profile; when it has nothing yet the defaults are
// used and written locally.
func (m *Manager) Load(ctx context.Context, userID uuid.UUID) (models.UserPreferences, error) {
	if userID == uuid.Nil || m.users == nil {
		return m.loadLocal(), nil
	}

	prefs, err := m.users.GetPreferences(ctx, userID)
	if err != nil {
		return models.DefaultPreferences(), fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		defaults := models.DefaultPreferences()
		m.saveLocal(defaults)
		return defaults, nil
	}
	return *prefs, nil
}

// Update applies patch to current and writes the result locally. Nothing is
// sent to the profile until Save.
func (m *Manager) Update(current models.UserPreferences, patch models.PreferencesPatch) (models.UserPreferences, error) {
	if err := validation.Struct(patch); err != nil {
		return current, err
	}
	updated := current.Apply(patch)
	m.saveLocal(updated)
	return updated, nil
}

// Reset goes back to the defaults locally
func (m *Manager) Reset() models.UserPreferences {
	defaults := models.DefaultPreferences()
	m.saveLocal(defaults)
	return defaults
}

// Save writes prefs to the profile (when signed in) and to the local copy,
// returning the notification to show either way.
func (m *Manager) Save(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) (models.Notification, error) {
	if err := validation.Struct(prefs); err != nil {
		return models.NewErrorNotification("Error", SaveFailedText), err
	}

	if userID != uuid.Nil && m.users != nil {
		if err := m.users.UpdatePreferences(ctx, userID, prefs); err != nil {
			m.logger.Error("preferences_save_failed", zap.String("user_id", userID.String()), zap.Error(err))
			return models.NewErrorNotification("Error", SaveFailedText), err
		}
	}

	if m.local != nil {
		if err := m.local.Save(prefs); err != nil {
			m.logger.Error("preferences_local_save_failed", zap.String("path", m.local.Path()), zap.Error(err))
			return models.NewErrorNotification("Error", SaveFailedText), err
		}
	}

	return models.NewNotification("Success", SavedText), nil
}

func (m *Manager) loadLocal() models.UserPreferences {
	if m.local == nil {
		return models.DefaultPreferences()
	}
	prefs, _, err := m.local.Load()
	if err != nil {
		m.logger.Warn("preferences_local_load_failed", zap.String("path", m.local.Path()), zap.Error(err))
	}
	return prefs
}

func (m *Manager) saveLocal(prefs models.UserPreferences) {
	if m.local == nil {
		return
	}
	if err := m.local.Save(prefs); err != nil {
		m.logger.Warn("preferences_local_save_failed", zap.String("path", m.local.Path()), zap.Error(err))
	}
}
