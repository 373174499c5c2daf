package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetSettings() {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = Settings{}
	settingsSet = false
}

func TestSettingsDefaultsBeforeInit(t *testing.T) {
	resetSettings()
	t.Cleanup(resetSettings)

	got := CurrentSettings()
	assert.True(t, got.AutoEmbedding)
	assert.True(t, got.AutoAnonymize)
}

func TestSettingsInitOnce(t *testing.T) {
	resetSettings()
	t.Cleanup(resetSettings)

	require.NoError(t, InitSettings(Settings{AutoEmbedding: false, AutoAnonymize: true}))
	got := CurrentSettings()
	assert.False(t, got.AutoEmbedding)
	assert.True(t, got.AutoAnonymize)

	err := InitSettings(DefaultSettings())
	assert.ErrorIs(t, err, ErrSettingsInitialized)
	// The first value wins.
	assert.False(t, CurrentSettings().AutoEmbedding)
}
