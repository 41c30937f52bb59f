// Package repoconfig models per-repository structure documents and loads
// them, resolving "extends" inheritance into an immutable RepositoryConfig.
package repoconfig

import (
	"encoding/json"
	"slices"
	"sort"

	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/version"
)

// DetectionStrategy describes how modules of a repository are found.
type DetectionStrategy string

const (
	DetectionFilenamePattern DetectionStrategy = "filename_pattern"
	DetectionDirectoryBased  DetectionStrategy = "directory_based"
	DetectionMetadataFile    DetectionStrategy = "metadata_file"
	DetectionHybrid          DetectionStrategy = "hybrid"
)

// FetchStrategy describes how much repository content a consumer needs.
type FetchStrategy string

const (
	FetchFullContent    FetchStrategy = "full_content"
	FetchFilenamesOnly  FetchStrategy = "filenames_only"
	FetchDirectoryNames FetchStrategy = "directory_names"
)

// ModulePattern identifies files of a category.
type ModulePattern = pattern.Pattern

// ModuleCategory is a named grouping of files.
type ModuleCategory struct {
	Name              string            `json:"name"`
	DisplayName       string            `json:"display_name,omitempty"`
	Paths             []string          `json:"paths,omitempty"`
	Patterns          []ModulePattern   `json:"patterns,omitempty"`
	DetectionStrategy DetectionStrategy `json:"detection_strategy,omitempty"`
	// MetadataField and MetadataValue are descriptive only; matching is pattern based.
	MetadataField string `json:"metadata_field,omitempty"`
	MetadataValue string `json:"metadata_value,omitempty"`
}

// Categories is an insertion-ordered set of module categories keyed by name.
type Categories struct {
	byName map[string]*ModuleCategory
	order  []string
}

// NewCategories builds a Categories from cats, keeping their order. Later
// duplicates replace earlier ones in place.
func NewCategories(cats ...*ModuleCategory) Categories {
	c := Categories{byName: make(map[string]*ModuleCategory, len(cats))}
	for _, cat := range cats {
		c.Set(cat)
	}
	return c
}

// Set adds or replaces a category.
func (c *Categories) Set(cat *ModuleCategory) {
	if c.byName == nil {
		c.byName = make(map[string]*ModuleCategory)
	}
	if _, ok := c.byName[cat.Name]; !ok {
		c.order = append(c.order, cat.Name)
	}
	c.byName[cat.Name] = cat
}

// Get returns the named category or nil.
func (c Categories) Get(name string) *ModuleCategory { return c.byName[name] }

// Names returns the category names in document order.
func (c Categories) Names() []string { return slices.Clone(c.order) }

// All returns the categories in document order.
func (c Categories) All() []*ModuleCategory {
	out := make([]*ModuleCategory, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.byName[n])
	}
	return out
}

// Len returns the number of categories.
func (c Categories) Len() int { return len(c.order) }

// MarshalJSON renders the categories as an array in document order.
func (c Categories) MarshalJSON() ([]byte, error) { return json.Marshal(c.All()) }

// VersionConfig overrides categories for a version or version range.
type VersionConfig struct {
	Version          string     `json:"version"`
	VersionRange     string     `json:"version_range,omitempty"`
	ModuleCategories Categories `json:"module_categories"`
	MetadataPath     string     `json:"metadata_path,omitempty"`
	MetadataPattern  string     `json:"metadata_pattern,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// Matches reports whether v selects this config: an exact label match, or
// membership in VersionRange. Unparsable versions never match a range.
func (vc VersionConfig) Matches(v string) bool {
	if v == "" {
		return false
	}
	if v == vc.Version {
		return true
	}
	if vc.VersionRange == "" {
		return false
	}
	return version.MatchesRange(v, vc.VersionRange)
}

// RepositoryRelationship is a descriptive link to another repository.
type RepositoryRelationship struct {
	Type        string `json:"type"`
	Target      string `json:"target"`
	Description string `json:"description,omitempty"`
}

// RepositoryStructure is the merged structure of one repository. It is
// read-only once built.
type RepositoryStructure struct {
	RepoName          string                   `json:"repo_name"`
	RepoType          string                   `json:"repo_type"`
	Description       string                   `json:"description,omitempty"`
	DetectionStrategy DetectionStrategy        `json:"detection_strategy"`
	FetchStrategy     FetchStrategy            `json:"fetch_strategy"`
	ModuleCategories  Categories               `json:"module_categories"`
	VersionConfigs    []VersionConfig          `json:"version_configs,omitempty"`
	DefaultVersion    string                   `json:"default_version,omitempty"`
	CorePaths         []string                 `json:"core_paths,omitempty"`
	TestPaths         []string                 `json:"test_paths,omitempty"`
	DocPaths          []string                 `json:"doc_paths,omitempty"`
	ExcludePaths      []string                 `json:"exclude_paths,omitempty"`
	Relationships     []RepositoryRelationship `json:"relationships,omitempty"`
	Metadata          map[string]any           `json:"metadata,omitempty"`
	// Source is the document the structure was loaded from.
	Source string `json:"source,omitempty"`
}

// VersionConfigFor returns the first version config selecting v, or nil.
func (r *RepositoryStructure) VersionConfigFor(v string) *VersionConfig {
	if v == "" {
		return nil
	}
	for i := range r.VersionConfigs {
		if r.VersionConfigs[i].Matches(v) {
			return &r.VersionConfigs[i]
		}
	}
	return nil
}

// ModuleCategory returns the named category for v. A version override fully
// replaces the default category of the same name.
func (r *RepositoryStructure) ModuleCategory(name, v string) *ModuleCategory {
	if vc := r.VersionConfigFor(v); vc != nil {
		if cat := vc.ModuleCategories.Get(name); cat != nil {
			return cat
		}
	}
	return r.ModuleCategories.Get(name)
}

// RepositoryConfig holds every loaded repository structure keyed by name.
type RepositoryConfig struct {
	Repositories map[string]*RepositoryStructure
}

// NewRepositoryConfig returns an empty configuration.
func NewRepositoryConfig() *RepositoryConfig {
	return &RepositoryConfig{Repositories: make(map[string]*RepositoryStructure)}
}

// Repository returns the named structure or nil.
func (c *RepositoryConfig) Repository(name string) *RepositoryStructure {
	if c == nil {
		return nil
	}
	return c.Repositories[name]
}

// RepositoriesByType returns every repository of the given type, sorted by name.
func (c *RepositoryConfig) RepositoriesByType(repoType string) []*RepositoryStructure {
	var out []*RepositoryStructure
	for _, name := range c.Names() {
		if r := c.Repositories[name]; r.RepoType == repoType {
			out = append(out, r)
		}
	}
	return out
}

// Names returns the repository names in sorted order.
func (c *RepositoryConfig) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Repositories))
	for n := range c.Repositories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of repositories.
func (c *RepositoryConfig) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Repositories)
}
