package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		RepositoryPath: t.TempDir(),
		ServerURL:      "https://transfer.example.org",
		ClientID:       "client-1234",
		RemoteEndpoint: "ep-remote",
		LocalEndpoint:  "ep-local",
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.RepositoryPath))

	t.Run("missing client id", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.ClientID = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing remote endpoint", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.RemoteEndpoint = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad server url", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.ServerURL = "ftp://bad.example.org"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server url")
	})

	t.Run("repository path not a directory", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.RepositoryPath = filepath.Join(cfg.RepositoryPath, "nope")
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	require.NoError(t, cfg.Save(path, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ClientID, loaded.ClientID)
	assert.Equal(t, cfg.RemoteEndpoint, loaded.RemoteEndpoint)
	assert.Equal(t, cfg.LocalEndpoint, loaded.LocalEndpoint)
	assert.Equal(t, path, loaded.Path)
}

func TestConfig_SaveRefusesOverwrite(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, cfg.Save(path, false))
	err := cfg.Save(path, false)
	require.ErrorIs(t, err, ErrExists)

	// explicit overwrite is allowed
	require.NoError(t, cfg.Save(path, true))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}
