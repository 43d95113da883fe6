package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parlavoce/parla/internal/hotkey"
)

func TestResolvePath(t *testing.T) {
	require.Equal(t, "/tmp/custom.toml", mustResolve(t, "/tmp/custom.toml"))

	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	require.Equal(t, filepath.Join("/xdg", "parla", "config.toml"), mustResolve(t, ""))

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "parla", "config.toml"), mustResolve(t, ""))
}

func mustResolve(t *testing.T, explicit string) string {
	t.Helper()
	path, err := ResolvePath(explicit)
	require.NoError(t, err)
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	loaded, err := Load(path)
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.Len(t, loaded.Warnings, 1)
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[hotkey]
modifiers = [29, 42]
trigger = 30

[refinement]
gemini_api_key = "abc123"

[model]
name = "does-not-exist"

[cues]
enable = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)

	cfg := loaded.Config
	require.Equal(t, []uint16{29, 42}, cfg.Hotkey.Modifiers)
	require.Equal(t, uint16(30), cfg.Hotkey.Trigger)
	require.Equal(t, "Ctrl+Shift+A", cfg.Hotkey.DisplayName)
	require.Equal(t, "abc123", cfg.Refinement.GeminiAPIKey)
	require.Equal(t, "base.en", cfg.Model.Name)
	require.False(t, cfg.Cues.Enable)
	require.Len(t, loaded.Warnings, 1)
}

func TestLoadInvalidHotkeyFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hotkey]\nmodifiers = []\ntrigger = 0\n"), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, hotkey.DefaultDescriptor(), loaded.Config.Hotkey)
	require.NotEmpty(t, loaded.Warnings)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Hotkey = hotkey.Descriptor{Modifiers: []uint16{29, 56}, Trigger: 57, DisplayName: "Ctrl+Alt+Space"}
	cfg.Refinement.GeminiAPIKey = "key"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded.Config)
	require.Empty(t, loaded.Warnings)
}

func TestSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(path, Default()))

	cfg := Default()
	cfg.Model.Name = "tiny.en"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "tiny.en", loaded.Config.Model.Name)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hotkey\n"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}
