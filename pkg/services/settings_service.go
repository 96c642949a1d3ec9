package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"media-gallery/pkg/metrics"
	"media-gallery/pkg/models"
)

// SettingsStore persists the display settings document
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore creates a store for the document at path
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Get returns the stored settings, falling back to the defaults when the
// document is absent, unparsable or holds an unknown display mode.
func (s *SettingsStore) Get(ctx context.Context) models.Settings {
	defaults := models.Settings{DisplayMode: models.DefaultDisplayMode}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to read settings", "path", s.path, "error", err)
		}
		return defaults
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.WarnContext(ctx, "Failed to parse settings", "path", s.path, "error", err)
		return defaults
	}
	if !models.ValidDisplayMode(settings.DisplayMode) {
		return defaults
	}
	return settings
}

// Set overwrites the settings document with the given display mode
func (s *SettingsStore) Set(ctx context.Context, displayMode int) (err error) {
	defer func(started time.Time) { metrics.RecordCatalogOperation(metrics.OpSetSettings, started, err) }(time.Now())

	if !models.ValidDisplayMode(displayMode) {
		return fmt.Errorf("%w: displayMode must be 1 or 2, got %d", ErrInvalidArgument, displayMode)
	}

	data, err := json.MarshalIndent(models.Settings{DisplayMode: displayMode}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode settings: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.InfoContext(ctx, "Display mode updated", "displayMode", displayMode)
	return nil
}
