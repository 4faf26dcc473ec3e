package service

import (
	"log"
	"strconv"

	"sanitycsv/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main Wails window size between sessions,
// as two rows of the app_settings key-value table.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions.
type WindowSettingsService struct {
	settings *storage.SettingsStore
}

// NewWindowSettingsService creates a WindowSettingsService. A nil store
// always yields the defaults.
func NewWindowSettingsService(settings *storage.SettingsStore) *WindowSettingsService {
	return &WindowSettingsService{settings: settings}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 960
	defaultWindowHeight = 720
	minWindowWidth      = 640
	minWindowHeight     = 480
)

// LoadWindowSize returns the saved window dimensions, or the defaults.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	return WindowSize{
		Width:  s.load(settingWindowWidth, defaultWindowWidth, minWindowWidth),
		Height: s.load(settingWindowHeight, defaultWindowHeight, minWindowHeight),
	}
}

func (s *WindowSettingsService) load(key string, def, floor int) int {
	if s.settings == nil {
		return def
	}
	raw, ok, err := s.settings.Get(key)
	if err != nil {
		log.Printf("[SETTINGS] read %s: %v", key, err)
		return def
	}
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < floor {
		return def
	}
	return v
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(width, height int) error {
	if s.settings == nil {
		return nil
	}
	if err := s.settings.Set(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.settings.Set(settingWindowHeight, strconv.Itoa(height))
}
