package repoconfig

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/maps"

	"git.home.luguber.info/inful/repotag/internal/errors"
	"git.home.luguber.info/inful/repotag/internal/logfields"
)

const (
	// MasterFileName lists the repository documents of a config directory.
	MasterFileName = "repositories.json"
	// RepositoriesDir is scanned when a config directory has no master file.
	RepositoriesDir = "repositories"
)

// IsDocumentFile reports whether path has a configuration document extension.
func IsDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

type cachedDocument struct {
	doc     *rawDocument
	modTime time.Time
	size    int64
}

// Loader reads repository structure documents from a file or directory.
type Loader struct {
	path   string
	strict bool
	logger *slog.Logger
	cache  *Cache[string, cachedDocument]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStrictMode turns validation issues and dangling extends into errors.
func WithStrictMode(strict bool) LoaderOption { return func(l *Loader) { l.strict = strict } }

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCacheSize bounds the parsed document cache.
func WithCacheSize(n int) LoaderOption {
	return func(l *Loader) { l.cache = NewCache[string, cachedDocument](n) }
}

// NewLoader returns a Loader for path, which may be a config directory, a
// master file, a single repository document or a legacy multi-repository map.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache[string, cachedDocument](DefaultCacheSize)
	}
	return l
}

// Path returns the configured root.
func (l *Loader) Path() string { return l.path }

// Strict reports whether strict mode is enabled.
func (l *Loader) Strict() bool { return l.strict }

// Load reads every repository structure below the configured root.
func (l *Loader) Load() (*RepositoryConfig, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(l.path)
		}
		return nil, errors.ConfigLoadFailed(l.path, err)
	}
	if !info.IsDir() {
		if filepath.Base(l.path) == MasterFileName {
			return l.loadMaster(l.path)
		}
		return l.LoadFile(l.path)
	}
	master := filepath.Join(l.path, MasterFileName)
	if _, err := os.Stat(master); err == nil {
		return l.loadMaster(master)
	}
	dir := filepath.Join(l.path, RepositoriesDir)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		dir = l.path
	}
	return l.LoadDirectory(dir)
}

func (l *Loader) loadMaster(master string) (*RepositoryConfig, error) {
	doc, err := l.document(master)
	if err != nil {
		return nil, errors.ConfigLoadFailed(master, err)
	}
	cfg := NewRepositoryConfig()
	entries, _ := doc.Data["repositories"].([]any)
	base := filepath.Dir(master)
	for _, e := range entries {
		rel, ok := e.(string)
		if !ok {
			continue
		}
		full := filepath.Join(base, rel)
		if _, err := os.Stat(full); err != nil {
			if l.strict {
				return nil, errors.ConfigNotFound(full).WithContext("referenced_by", master)
			}
			l.logger.Warn("Referenced configuration not found", logfields.ConfigPath(full))
			continue
		}
		if err := l.addRepository(cfg, full); err != nil {
			if l.strict {
				return nil, err
			}
			l.logger.Error("Failed to load repository configuration", logfields.ConfigPath(full), logfields.Error(err))
		}
	}
	return cfg, nil
}

// LoadDirectory loads every repository document below dir. Paths containing
// "schema" and files whose name contains "base" are skipped, as are
// documents without a repo_name.
func (l *Loader) LoadDirectory(dir string) (*RepositoryConfig, error) {
	cfg := NewRepositoryConfig()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsDocumentFile(path) {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		if strings.Contains(rel, "schema") || strings.Contains(d.Name(), "base") {
			return nil
		}
		doc, err := l.document(path)
		if err != nil {
			if l.strict {
				return errors.ConfigLoadFailed(path, err)
			}
			l.logger.Error("Failed to read configuration", logfields.ConfigPath(path), logfields.Error(err))
			return nil
		}
		if _, ok := doc.Data["repo_name"]; !ok {
			return nil
		}
		if err := l.addRepository(cfg, path); err != nil {
			if l.strict {
				return err
			}
			l.logger.Error("Failed to load repository configuration", logfields.ConfigPath(path), logfields.Error(err))
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.TaggerError); ok {
			return nil, err
		}
		return nil, errors.ConfigLoadFailed(dir, err)
	}
	return cfg, nil
}

// LoadFile loads a single document: either one repository definition
// (with repo_name and repo_type) or a legacy map of repo name to structure.
func (l *Loader) LoadFile(path string) (*RepositoryConfig, error) {
	doc, err := l.document(path)
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	cfg := NewRepositoryConfig()
	_, hasName := doc.Data["repo_name"]
	_, hasType := doc.Data["repo_type"]
	if hasName && hasType {
		if err := l.addRepository(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	for _, name := range orderedKeys(doc.Data, doc.Order.keys()) {
		if strings.HasPrefix(name, "$") {
			continue
		}
		entry, ok := doc.Data[name].(map[string]any)
		if !ok {
			continue
		}
		data := maps.Copy(entry)
		if _, ok := data["repo_name"]; !ok {
			data["repo_name"] = name
		}
		repo, err := l.build(path, data, doc.Order.sub(name))
		if err != nil {
			return nil, err
		}
		cfg.Repositories[name] = repo
	}
	return cfg, nil
}

// LoadRepository resolves and builds the repository document at path.
func (l *Loader) LoadRepository(path string) (*RepositoryStructure, error) {
	data, order, err := l.resolve(path, nil)
	if err != nil {
		return nil, err
	}
	return l.build(path, data, order)
}

func (l *Loader) addRepository(cfg *RepositoryConfig, path string) error {
	repo, err := l.LoadRepository(path)
	if err != nil {
		return err
	}
	if repo.RepoName == "" {
		return nil
	}
	if prev, ok := cfg.Repositories[repo.RepoName]; ok {
		l.logger.Warn("Duplicate repository definition, later document wins",
			logfields.Repository(repo.RepoName),
			logfields.ConfigPath(path),
			slog.String("previous", prev.Source))
	}
	cfg.Repositories[repo.RepoName] = repo
	l.logger.Debug("Loaded repository configuration", logfields.Repository(repo.RepoName), logfields.ConfigPath(path))
	return nil
}

func (l *Loader) build(path string, data map[string]any, order keyOrder) (*RepositoryStructure, error) {
	normalizeLegacy(data)
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	if issues := validationIssues(doc); len(issues) > 0 {
		if l.strict {
			return nil, errors.ConfigValidationFailed(path, issues)
		}
		for _, issue := range issues {
			l.logger.Warn("Configuration validation issue", logfields.ConfigPath(path), slog.String("issue", issue))
		}
	}
	b := &structureBuilder{logger: l.logger, source: path}
	return b.build(doc, order), nil
}

// resolve returns the document at path with its extends chain merged in.
// chain holds the documents currently being resolved.
func (l *Loader) resolve(path string, chain []string) (map[string]any, keyOrder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, errors.ConfigLoadFailed(path, err)
	}
	if slices.Contains(chain, abs) {
		return nil, nil, errors.CircularInheritance(append(slices.Clone(chain), abs))
	}
	doc, err := l.document(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ConfigNotFound(abs)
		}
		return nil, nil, errors.ConfigLoadFailed(abs, err)
	}
	data := maps.Copy(doc.Data)
	ext, _ := data["extends"].(string)
	delete(data, "extends")
	if ext == "" {
		return data, doc.Order, nil
	}

	basePath := filepath.Join(filepath.Dir(abs), ext)
	if _, err := os.Stat(basePath); err != nil {
		if l.strict {
			return nil, nil, errors.ConfigNotFound(basePath).WithContext("extended_by", abs)
		}
		l.logger.Warn("Base configuration not found, loading standalone",
			logfields.ConfigPath(abs),
			slog.String("extends", basePath))
		return data, doc.Order, nil
	}
	base, baseOrder, err := l.resolve(basePath, append(slices.Clone(chain), abs))
	if err != nil {
		return nil, nil, err
	}
	return deepMerge(base, data), mergeOrder(baseOrder, doc.Order), nil
}

// deepMerge merges override onto base: objects merge key by key, scalars and
// lists replace. Neither argument is modified.
func deepMerge(base, override map[string]any) map[string]any {
	out := maps.Copy(base)
	maps.Merge(maps.Copy(override), out)
	return out
}

// document returns the parsed document at path, reusing the cached parse
// while the file's size and modification time are unchanged.
func (l *Loader) document(path string) (*rawDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if c, ok := l.cache.Get(abs); ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.doc, nil
	}
	doc, err := readDocument(abs)
	if err != nil {
		return nil, err
	}
	l.cache.Put(abs, cachedDocument{doc: doc, modTime: info.ModTime(), size: info.Size()})
	return doc, nil
}

// ClearCache drops every cached document.
func (l *Loader) ClearCache() { l.cache.Clear() }
