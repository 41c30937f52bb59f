package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/repotag/internal/errors"
	"git.home.luguber.info/inful/repotag/internal/logfields"
)

// document is the on-disk registry layout.
type document struct {
	Repo        string           `yaml:"repo"`
	Structure   yaml.Node        `yaml:"structure"`
	Definitions []map[string]any `yaml:"definitions"`
	Rules       []map[string]any `yaml:"rules"`
}

// LoadFile parses the registry document at path. A document without a
// "repo" key is a validation error.
func LoadFile(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ConfigLoadFailed(path, fmt.Errorf("parse registry: %w", err))
	}
	if strings.TrimSpace(doc.Repo) == "" {
		return nil, errors.ConfigValidationFailed(path, []string{"repo: required"})
	}
	reg := &Registry{
		Name:        stem(path),
		RepoURL:     strings.TrimSpace(doc.Repo),
		Patterns:    parseStructure(&doc.Structure, path, logger),
		Definitions: doc.Definitions,
		Rules:       doc.Rules,
		Source:      path,
	}
	return reg, nil
}

// Set is an immutable collection of registries ordered by name.
type Set struct {
	registries []*Registry
}

// NewSet builds a Set from regs.
func NewSet(regs ...*Registry) *Set {
	s := &Set{registries: slices.Clone(regs)}
	slices.SortStableFunc(s.registries, func(a, b *Registry) int { return strings.Compare(a.Name, b.Name) })
	return s
}

// LoadDirectory loads every *.yaml and *.yml registry directly inside dir.
// A file that fails to load is logged and skipped.
func LoadDirectory(dir string, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(dir)
		}
		return nil, errors.ConfigLoadFailed(dir, err)
	}
	var regs []*Registry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		reg, err := LoadFile(path, logger)
		if err != nil {
			logger.Error("Failed to load registry", logfields.ConfigPath(path), logfields.Error(err))
			continue
		}
		logger.Debug("Loaded registry",
			logfields.ConfigPath(path),
			logfields.Repository(reg.RepoURL),
			logfields.Count(len(reg.Patterns)))
		regs = append(regs, reg)
	}
	return NewSet(regs...), nil
}

// All returns the registries ordered by name.
func (s *Set) All() []*Registry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.registries)
}

// Len returns the number of registries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.registries)
}

// Lookup finds the registry for a repository URL: first by URL equality or
// URL suffix, then by comparing the registry name with the last URL segment,
// treating '-' and '.' alike and ignoring case.
func (s *Set) Lookup(repoURL string) *Registry {
	if s == nil || repoURL == "" {
		return nil
	}
	for _, r := range s.registries {
		if r.RepoURL == repoURL || strings.HasSuffix(repoURL, r.RepoURL) {
			return r
		}
	}
	name := comparableName(repoName(repoURL))
	for _, r := range s.registries {
		if comparableName(r.Name) == name {
			return r
		}
	}
	return nil
}

func repoName(repoURL string) string {
	name := repoURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

func comparableName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", "."))
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
