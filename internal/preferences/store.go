// Package preferences loads and saves display and assistant settings. A local
// file keyed "user_preferences" always holds the latest copy; signed-in users
// also keep them on their account profile.
package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benvon/cook-with-ai/internal/models"
)

// StorageKey names the local preferences document
const StorageKey = "user_preferences"

// FileStore keeps preferences as JSON on the local disk
type FileStore struct {
	path string
}

// NewFileStore stores preferences under dir. An empty dir means the user
// config directory (for example ~/.config/cook-with-ai).
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		dir = filepath.Join(base, "cook-with-ai")
	}
	return &FileStore{path: filepath.Join(dir, StorageKey+".json")}, nil
}

// Path returns the file backing the store
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the saved preferences merged over the defaults. found is false
// when nothing has been saved yet. A corrupt file yields the defaults and an error.
func (s *FileStore) Load() (prefs models.UserPreferences, found bool, err error) {
	prefs = models.DefaultPreferences()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, false, nil
	}
	if err != nil {
		return prefs, false, fmt.Errorf("failed to read preferences: %w", err)
	}

	saved := models.DefaultPreferences()
	if err := json.Unmarshal(data, &saved); err != nil {
		return prefs, false, fmt.Errorf("failed to parse stored preferences: %w", err)
	}
	return saved, true, nil
}

// Save replaces the stored document. The write goes through a temp file so a
// crash never leaves half a document behind.
func (s *FileStore) Save(prefs models.UserPreferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), StorageKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
