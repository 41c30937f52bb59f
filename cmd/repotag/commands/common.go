// Package commands implements the repotag command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/repotag/internal/config"
	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/registry"
	"git.home.luguber.info/inful/repotag/internal/repoconfig"
	"git.home.luguber.info/inful/repotag/internal/structure"
)

// Global carries shared state into subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI is the root command with global flags.
type CLI struct {
	Settings string           `short:"s" help:"Engine settings file" default:"repotag.yaml"`
	Config   string           `short:"c" help:"Repository configuration path (overrides settings)"`
	Registry string           `short:"r" help:"Tagging registry directory (overrides settings)"`
	Strict   bool             `help:"Treat validation failures and missing base documents as errors"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Validate ValidateCmd `cmd:"" help:"Validate repository configuration documents"`
	Migrate  MigrateCmd  `cmd:"" help:"Split a legacy single-file configuration into a multi-file tree"`
	Test     TestCmd     `cmd:"" help:"Load the configuration and summarize every repository"`
	Check    CheckCmd    `cmd:"" help:"Classify one file of a repository"`
	List     ListCmd     `cmd:"" help:"List configured repositories"`
	Show     ShowCmd     `cmd:"" help:"Show the structure of one repository"`
	Watch    WatchCmd    `cmd:"" help:"Watch the configuration and reload it on change"`
	Tag      TagCmd      `cmd:"" help:"Tag a change set"`

	settings *config.Settings
}

// AfterApply runs after flag parsing; it loads settings and sets up logging once.
func (c *CLI) AfterApply() error {
	s, err := c.LoadSettings()
	if err != nil {
		return err
	}
	level, _ := s.LogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if s.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// LoadSettings reads the settings file once and applies flag overrides.
func (c *CLI) LoadSettings() (*config.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	s, err := config.Load(c.Settings)
	if err != nil {
		return nil, err
	}
	if c.Config != "" {
		s.ConfigPath = c.Config
	}
	if c.Registry != "" {
		s.RegistryPath = c.Registry
	}
	if c.Strict {
		s.StrictMode = true
	}
	c.settings = s
	return s, nil
}

func newLoader(s *config.Settings, path string, logger *slog.Logger) *repoconfig.Loader {
	if path == "" {
		path = s.ConfigPath
	}
	return repoconfig.NewLoader(path,
		repoconfig.WithStrictMode(s.StrictMode),
		repoconfig.WithCacheSize(s.Cache.ConfigSize),
		repoconfig.WithLogger(logger))
}

func newMatcher(s *config.Settings) *pattern.Matcher {
	return pattern.NewMatcher(
		pattern.WithMatchCacheSize(s.Cache.MatchSize),
		pattern.WithRegexCacheSize(s.Cache.RegexSize))
}

func newManager(s *config.Settings, matcher *pattern.Matcher, recorder metrics.Recorder, logger *slog.Logger) (*structure.Manager, error) {
	return structure.NewManager(newLoader(s, "", logger),
		structure.WithLogger(logger),
		structure.WithMatcher(matcher),
		structure.WithRecorder(recorder))
}

// loadRegistries loads the registry directory. A missing directory is not
// an error: tagging then relies on structure classification alone.
func loadRegistries(s *config.Settings, logger *slog.Logger) *registry.Set {
	set, err := registry.LoadDirectory(s.RegistryPath, logger)
	if err != nil {
		logger.Warn("Tagging registries unavailable", logfields.ConfigPath(s.RegistryPath), logfields.Error(err))
		return registry.NewSet()
	}
	return set
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
