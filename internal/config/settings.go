// Package config reads the engine settings file, repotag.yaml: where the
// repository and registry documents live and how they are reloaded and cached.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is the settings file looked up when none is given.
const DefaultSettingsFile = "repotag.yaml"

const (
	defaultConfigPath      = "config"
	defaultRegistryPath    = "registry"
	defaultDebounce        = "1s"
	defaultMatchCacheSize  = 256
	defaultRegexCacheSize  = 128
	defaultConfigCacheSize = 100
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Settings is the engine configuration.
type Settings struct {
	ConfigPath   string          `yaml:"config_path"`
	RegistryPath string          `yaml:"registry_path"`
	StrictMode   bool            `yaml:"strict_mode"`
	HotReload    HotReloadConfig `yaml:"hot_reload"`
	Cache        CacheConfig     `yaml:"cache"`
	Logging      LoggingConfig   `yaml:"logging"`
	Metrics      MetricsConfig   `yaml:"metrics"`
}

// HotReloadConfig controls configuration reloads. Durations use
// time.ParseDuration syntax.
type HotReloadConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
	// Interval enables a periodic reload in addition to file watching.
	Interval string `yaml:"interval"`
}

// CacheConfig bounds the in-memory caches.
type CacheConfig struct {
	MatchSize  int `yaml:"match_size"`
	RegexSize  int `yaml:"regex_size"`
	ConfigSize int `yaml:"config_size"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint served by watch.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// Load reads settings from path after loading .env and .env.local. A
// missing file yields the defaults; ${VAR} references are expanded.
func Load(path string) (*Settings, error) {
	loadEnvFiles()

	s := &Settings{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("Settings file not found, using defaults", slog.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	applyDefaults(s)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return s, nil
}

// loadEnvFiles loads .env then .env.local. Existing process variables are
// never overwritten.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load env file", slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", f))
	}
}

func applyDefaults(s *Settings) {
	if s.ConfigPath == "" {
		s.ConfigPath = defaultConfigPath
	}
	if s.RegistryPath == "" {
		s.RegistryPath = defaultRegistryPath
	}
	if s.HotReload.Debounce == "" {
		s.HotReload.Debounce = defaultDebounce
	}
	if s.Cache.MatchSize == 0 {
		s.Cache.MatchSize = defaultMatchCacheSize
	}
	if s.Cache.RegexSize == 0 {
		s.Cache.RegexSize = defaultRegexCacheSize
	}
	if s.Cache.ConfigSize == 0 {
		s.Cache.ConfigSize = defaultConfigCacheSize
	}
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	s.Logging.Format = LogFormat(strings.ToLower(strings.TrimSpace(string(s.Logging.Format))))
	if s.Logging.Format == "" {
		s.Logging.Format = LogFormatText
	}
	if s.Metrics.Address == "" {
		s.Metrics.Address = ":9090"
	}
	if s.Metrics.Path == "" {
		s.Metrics.Path = "/metrics"
	}
}

// Validate reports the first invalid setting.
func (s *Settings) Validate() error {
	if s.Cache.MatchSize < 0 || s.Cache.RegexSize < 0 || s.Cache.ConfigSize < 0 {
		return errors.New("cache sizes must not be negative")
	}
	if _, err := s.DebounceDuration(); err != nil {
		return err
	}
	if _, err := s.IntervalDuration(); err != nil {
		return err
	}
	if _, err := s.LogLevel(); err != nil {
		return err
	}
	switch s.Logging.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: json, text)", s.Logging.Format)
	}
	if !strings.HasPrefix(s.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/': %s", s.Metrics.Path)
	}
	return nil
}

// DebounceDuration parses hot_reload.debounce.
func (s *Settings) DebounceDuration() (time.Duration, error) {
	return parseDuration("hot_reload.debounce", s.HotReload.Debounce)
}

// IntervalDuration parses hot_reload.interval. An empty interval is zero.
func (s *Settings) IntervalDuration() (time.Duration, error) {
	return parseDuration("hot_reload.interval", s.HotReload.Interval)
}

// LogLevel maps logging.level onto a slog level.
func (s *Settings) LogLevel() (slog.Level, error) {
	switch s.Logging.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid logging.level: %s (valid: debug, info, warn, error)", s.Logging.Level)
}

func parseDuration(field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative: %s", field, raw)
	}
	return d, nil
}
