package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultSettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, "config", s.ConfigPath)
	assert.Equal(t, "registry", s.RegistryPath)
	assert.Equal(t, 256, s.Cache.MatchSize)
	assert.Equal(t, 128, s.Cache.RegexSize)
	assert.Equal(t, 100, s.Cache.ConfigSize)

	d, err := s.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
	i, err := s.IntervalDuration()
	require.NoError(t, err)
	assert.Zero(t, i)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("REPOTAG_TEST_CONFIG", "/srv/repotag/config")
	path := writeSettings(t, `config_path: ${REPOTAG_TEST_CONFIG}
registry_path: registry/prebid
strict_mode: true
hot_reload:
  enabled: true
  debounce: 250ms
  interval: 5m
cache:
  match_size: 1024
logging:
  level: DEBUG
  format: json
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/repotag/config", s.ConfigPath)
	assert.Equal(t, "registry/prebid", s.RegistryPath)
	assert.True(t, s.StrictMode)
	assert.True(t, s.HotReload.Enabled)
	assert.Equal(t, 1024, s.Cache.MatchSize)
	assert.Equal(t, 128, s.Cache.RegexSize)

	d, _ := s.DebounceDuration()
	assert.Equal(t, 250*time.Millisecond, d)
	i, _ := s.IntervalDuration()
	assert.Equal(t, 5*time.Minute, i)
	level, err := s.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Equal(t, LogFormatJSON, s.Logging.Format)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"negative cache":    "cache:\n  regex_size: -1\n",
		"bad debounce":      "hot_reload:\n  debounce: soon\n",
		"negative interval": "hot_reload:\n  interval: -5s\n",
		"bad level":         "logging:\n  level: loud\n",
		"bad format":        "logging:\n  format: xml\n",
		"bad metrics path":  "metrics:\n  path: metrics\n",
		"malformed yaml":    "cache: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSettings(t, content))
			require.Error(t, err)
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPOTAG_TEST_REGISTRY=from-dotenv\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("REPOTAG_TEST_REGISTRY") })

	path := writeSettings(t, "registry_path: ${REPOTAG_TEST_REGISTRY}\n")
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", s.RegistryPath)
}
