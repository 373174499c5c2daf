package config

import (
	"errors"
	"sync"
)

// ErrSettingsInitialized is returned when InitSettings is called twice.
var ErrSettingsInitialized = errors.New("knowledge settings already initialized")

// Settings holds the process-wide knowledge-base behavior toggles. They are
// an explicit init-once value: the process decides them at startup, and later
// writes are rejected rather than silently racing with the pipeline.
type Settings struct {
	AutoEmbedding bool `yaml:"auto_embedding"`
	AutoAnonymize bool `yaml:"auto_anonymize"`
}

var (
	settingsMu  sync.RWMutex
	settings    Settings
	settingsSet bool
)

// DefaultSettings enables the full ingestion pipeline.
func DefaultSettings() Settings {
	return Settings{AutoEmbedding: true, AutoAnonymize: true}
}

// InitSettings sets the process-wide settings exactly once.
func InitSettings(s Settings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if settingsSet {
		return ErrSettingsInitialized
	}
	settings = s
	settingsSet = true
	return nil
}

// CurrentSettings returns the initialized settings, or the defaults when
// InitSettings has not been called yet.
func CurrentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if !settingsSet {
		return DefaultSettings()
	}
	return settings
}
