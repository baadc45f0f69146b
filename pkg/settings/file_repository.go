package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const settingsFileName = "userswitcher.json"

// FileRepository implements Repository using a JSON file
type FileRepository struct {
	dataDir  string
	settings Settings
	mutex    sync.RWMutex
}

// NewFileRepository creates a file-based repository in dataDir, loading any
// previously saved settings
func NewFileRepository(dataDir string) (*FileRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir:  dataDir,
		settings: Defaults(),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRepository) Load(ctx context.Context) (Settings, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.settings, nil
}

func (r *FileRepository) Save(ctx context.Context, s Settings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.settings
	r.settings = s
	if err := r.save(); err != nil {
		r.settings = previous
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, settingsFileName)

	// If file doesn't exist, keep defaults
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	// Start from defaults so fields missing from older files keep their default
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	r.settings = s
	return nil
}

// save writes settings to file atomically
func (r *FileRepository) save() error {
	jsonData, err := json.MarshalIndent(r.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, settingsFileName+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, settingsFileName)
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
