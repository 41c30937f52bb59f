// Package structure classifies repository paths against the loaded
// repository structure configuration and keeps that configuration current.
package structure

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/repotag/internal/errors"
	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

// Classification is the structural verdict for one path.
type Classification struct {
	Categories []string `json:"categories"`
	ModuleType string   `json:"module_type,omitempty"`
	IsCore     bool     `json:"is_core"`
	IsTest     bool     `json:"is_test"`
	IsDoc      bool     `json:"is_doc"`
}

// ModuleInfo extends Classification with the extracted module name.
type ModuleInfo struct {
	Classification
	ModuleName string `json:"module_name,omitempty"`
	RepoType   string `json:"repo_type,omitempty"`
}

// Manager owns the active repository configuration. Readers always see a
// complete configuration; reloads replace it atomically.
type Manager struct {
	loader   *repoconfig.Loader
	matcher  *pattern.Matcher
	logger   *slog.Logger
	recorder metrics.Recorder

	current  atomic.Pointer[repoconfig.RepositoryConfig]
	reloadMu sync.Mutex

	watchMu sync.Mutex
	watcher *Watcher
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithMatcher shares a pattern matcher and its caches.
func WithMatcher(pm *pattern.Matcher) Option {
	return func(m *Manager) {
		if pm != nil {
			m.matcher = pm
		}
	}
}

func newManager(opts []Option) *Manager {
	m := &Manager{logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(m)
	}
	if m.matcher == nil {
		m.matcher = pattern.NewMatcher()
	}
	return m
}

// NewManager loads the configuration through loader. A failed initial load
// is returned as a ConfigurationLoad error.
func NewManager(loader *repoconfig.Loader, opts ...Option) (*Manager, error) {
	m := newManager(opts)
	m.loader = loader
	cfg, err := loader.Load()
	if err != nil {
		m.recorder.IncReload(metrics.ResultFailed)
		if errors.IsCategory(err, errors.CategoryConfigLoad) {
			return nil, err
		}
		return nil, errors.ConfigLoadFailed(loader.Path(), err)
	}
	m.swap(cfg)
	m.logger.Info("Loaded repository configurations",
		logfields.ConfigPath(loader.Path()),
		logfields.Count(cfg.Len()))
	return m, nil
}

// NewManagerFromConfig wraps an already loaded configuration. Reload is a
// no-op for such managers.
func NewManagerFromConfig(cfg *repoconfig.RepositoryConfig, opts ...Option) *Manager {
	m := newManager(opts)
	if cfg == nil {
		cfg = repoconfig.NewRepositoryConfig()
	}
	m.swap(cfg)
	return m
}

func (m *Manager) swap(cfg *repoconfig.RepositoryConfig) {
	m.current.Store(cfg)
	m.recorder.SetRepositoriesLoaded(cfg.Len())
}

// Config returns the active configuration snapshot.
func (m *Manager) Config() *repoconfig.RepositoryConfig { return m.current.Load() }

// Reload loads the configuration again and swaps it in only on success.
// On failure the previous configuration stays active.
func (m *Manager) Reload() error {
	if m.loader == nil {
		return nil
	}
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	cfg, err := m.loader.Load()
	if err != nil {
		m.recorder.IncReload(metrics.ResultFailed)
		return err
	}
	m.swap(cfg)
	m.recorder.IncReload(metrics.ResultSuccess)
	m.logger.Info("Configuration reloaded", logfields.Count(cfg.Len()))
	return nil
}

// Repository resolves a repository URL or name to its structure.
func (m *Manager) Repository(repo string) *repoconfig.RepositoryStructure {
	cfg := m.Config()
	name := NormalizeRepoName(repo)
	if r := cfg.Repository(name); r != nil {
		return r
	}
	for _, n := range cfg.Names() {
		if strings.EqualFold(n, name) {
			return cfg.Repository(n)
		}
	}
	return nil
}

// RelatedRepositories returns the relationships declared by repo.
func (m *Manager) RelatedRepositories(repo string) []repoconfig.RepositoryRelationship {
	r := m.Repository(repo)
	if r == nil {
		return nil
	}
	return slices.Clone(r.Relationships)
}

// Classify categorizes path inside repo. version may be empty. Unknown
// repositories and excluded paths yield an empty classification.
func (m *Manager) Classify(repo, path, version string) Classification {
	start := time.Now()
	defer func() { m.recorder.ObserveClassificationDuration(time.Since(start)) }()

	r := m.Repository(repo)
	if r == nil {
		return Classification{Categories: []string{}}
	}
	return m.classify(r, path, version)
}

// ModuleInfo classifies path and extracts the module name. It reports false
// for unknown repositories.
func (m *Manager) ModuleInfo(repo, path, version string) (ModuleInfo, bool) {
	r := m.Repository(repo)
	if r == nil {
		return ModuleInfo{}, false
	}
	c := m.classify(r, path, version)
	info := ModuleInfo{Classification: c, RepoType: r.RepoType}
	if len(c.Categories) == 0 {
		return info, true
	}
	if vc := r.VersionConfigFor(version); vc != nil {
		info.ModuleName = m.moduleName(path, c.Categories, vc.ModuleCategories)
	}
	if info.ModuleName == "" {
		info.ModuleName = m.moduleName(path, c.Categories, r.ModuleCategories)
	}
	return info, true
}

func (m *Manager) classify(r *repoconfig.RepositoryStructure, path, version string) Classification {
	if m.inPaths(path, r.ExcludePaths) {
		return Classification{Categories: []string{}}
	}
	c := Classification{
		Categories: []string{},
		IsCore:     m.inPaths(path, r.CorePaths),
		IsTest:     m.inPaths(path, r.TestPaths),
		IsDoc:      m.inPaths(path, r.DocPaths),
	}
	consider := func(cat *repoconfig.ModuleCategory) {
		if !m.matchesCategory(r.RepoName, path, cat) {
			return
		}
		if !slices.Contains(c.Categories, cat.Name) {
			c.Categories = append(c.Categories, cat.Name)
		}
		if c.ModuleType == "" {
			c.ModuleType = cat.DisplayName
		}
	}
	for _, cat := range r.ModuleCategories.All() {
		consider(cat)
	}
	if vc := r.VersionConfigFor(version); vc != nil {
		for _, cat := range vc.ModuleCategories.All() {
			consider(cat)
		}
	}
	return c
}

func (m *Manager) moduleName(path string, matched []string, cats repoconfig.Categories) string {
	for _, name := range matched {
		cat := cats.Get(name)
		if cat == nil {
			continue
		}
		for _, p := range cat.Patterns {
			if ok, err := m.matcher.Matches(path, p); err != nil || !ok {
				continue
			}
			if n := pattern.ExtractName(path, p); n != "" {
				return n
			}
			return pattern.Stem(path)
		}
	}
	return ""
}

// matchesCategory requires root path membership (or no roots) and at least
// one matching pattern. Invalid patterns count as no match.
func (m *Manager) matchesCategory(repo, path string, cat *repoconfig.ModuleCategory) bool {
	if len(cat.Paths) > 0 && !slices.ContainsFunc(cat.Paths, func(root string) bool {
		return strings.HasPrefix(path, root)
	}) {
		return false
	}
	for _, p := range cat.Patterns {
		ok, err := m.matcher.Matches(path, p)
		if err != nil {
			m.recorder.IncPatternError(string(p.Dialect()))
			m.logger.Warn("Invalid pattern",
				logfields.Repository(repo),
				logfields.Category(cat.Name),
				logfields.Pattern(p.Pattern),
				logfields.Dialect(string(p.Dialect())),
				logfields.Error(err))
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// inPaths treats entries containing '*' as globs and the rest as prefixes.
func (m *Manager) inPaths(path string, paths []string) bool {
	for _, p := range paths {
		if strings.Contains(p, "*") {
			ok, err := m.matcher.Glob(path, p)
			if err != nil {
				m.recorder.IncPatternError(string(pattern.Glob))
				m.logger.Warn("Invalid path glob", logfields.Pattern(p), logfields.Error(err))
				continue
			}
			if ok {
				return true
			}
		} else if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// StartWatching reloads the configuration whenever a document below the
// loader's root changes, after debounce has passed without further changes.
func (m *Manager) StartWatching(ctx context.Context, debounce time.Duration) error {
	if m.loader == nil {
		return errors.InternalError("hot reload needs a loader", nil)
	}
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watcher != nil {
		return nil
	}
	w, err := NewWatcher(m.loader.Path(), m, WithDebounce(debounce), WithWatchLogger(m.logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	m.watcher = w
	m.logger.Info("Configuration hot reload enabled", logfields.ConfigPath(m.loader.Path()))
	return nil
}

// StopWatching stops the hot reload watcher, if any.
func (m *Manager) StopWatching() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watcher == nil {
		return nil
	}
	err := m.watcher.Stop()
	m.watcher = nil
	return err
}
