package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.jsonc")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.Exists)
	assert.Equal(t, "whisper-1", loaded.Config.ASR.Model)
	require.NotEmpty(t, loaded.Warnings)
	assert.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `{"playlists": {"Workout": "spotify:playlist:w1"}}`)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Exists)
	assert.Equal(t, "spotify:playlist:w1", loaded.Config.Playlists["Workout"])
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	path := writeConfig(t, `{"spotify": {"client_id": "file-id"}}`)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-id", loaded.Config.Spotify.ClientID)
	assert.Equal(t, "env-secret", loaded.Config.Spotify.ClientSecret)
}

func TestReloadKeepsPreviousSnapshotOnBadConfig(t *testing.T) {
	goodPath := writeConfig(t, `{"playlists": {"Workout": "spotify:playlist:v1"}}`)

	loaded, err := Load(goodPath)
	require.NoError(t, err)
	snap, err := NewSnapshot(loaded.Config)
	require.NoError(t, err)
	store := NewStore(snap)

	// Corrupt the file, then attempt a reload.
	require.NoError(t, os.WriteFile(goodPath, []byte(`{"matching": {"threshold": 9}}`), 0o600))
	reload(goodPath, store, nil)

	current := store.Snapshot()
	require.NotNil(t, current)
	assert.Equal(t, []string{"Workout"}, current.Vocab.AliasLabels())
}

func TestReloadInstallsNewSnapshot(t *testing.T) {
	path := writeConfig(t, `{"playlists": {"Workout": "spotify:playlist:v1"}}`)

	loaded, err := Load(path)
	require.NoError(t, err)
	snap, err := NewSnapshot(loaded.Config)
	require.NoError(t, err)
	store := NewStore(snap)

	require.NoError(t, os.WriteFile(path, []byte(`{"playlists": {"Jazz": "spotify:playlist:j1"}}`), 0o600))
	reload(path, store, nil)

	assert.Equal(t, []string{"Jazz"}, store.Snapshot().Vocab.AliasLabels())
}
