package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
	assert.Equal(t, float64(1), cfg.Scheduler.PollIntervalSeconds)
	assert.Equal(t, "memory", cfg.Scheduler.LastRunStore)
	assert.Equal(t, float64(30), cfg.Engine.DefaultActionTimeoutSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	original := DefaultConfig()
	original.Storage.Type = "postgresql"
	original.Storage.Postgres.Host = "db.internal"
	original.Scheduler.LastRunStore = "redis"
	original.Twitch.Channel = "cooldev"

	require.NoError(t, SaveConfig(original, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgresql", loaded.Storage.Type)
	assert.Equal(t, "db.internal", loaded.Storage.Postgres.Host)
	assert.Equal(t, "redis", loaded.Scheduler.LastRunStore)
	assert.Equal(t, "cooldev", loaded.Twitch.Channel)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	// A partial file only overrides what it sets.
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage": {"type": "dynamodb"}}`), 0644))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dynamodb", loaded.Storage.Type)
	assert.Equal(t, float64(1), loaded.Scheduler.PollIntervalSeconds)
	assert.Equal(t, "info", loaded.Logging.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
