// Package registry loads hierarchical tagging registries: one nested tree
// per repository whose ordinary keys are path segments and whose leaf keys
// name a matching dialect.
package registry

import (
	"strings"

	"git.home.luguber.info/inful/repotag/internal/tags"
)

// Dialect is the matching strategy of a registry leaf.
type Dialect string

const (
	NewAddition Dialect = "++"
	EndsWith    Dialect = "endsWith"
	Includes    Dialect = "includes"
	Dir         Dialect = "dir"
	File        Dialect = "file"
	Extension   Dialect = "files"
	LiteralPath Dialect = "path"
)

// Dialects lists every leaf dialect.
var Dialects = []Dialect{NewAddition, EndsWith, Includes, Dir, File, Extension, LiteralPath}

// leafDialect maps a leaf key to its dialect. The "files" key holds file
// names, while the files('.ext') call form selects Extension.
func leafDialect(key string) (Dialect, bool) {
	switch key {
	case "++":
		return NewAddition, true
	case "endsWith":
		return EndsWith, true
	case "includes":
		return Includes, true
	case "dir":
		return Dir, true
	case "file", "files":
		return File, true
	case "path":
		return LiteralPath, true
	}
	return "", false
}

// Pattern is one registry leaf together with the path trail leading to it.
type Pattern struct {
	Trail  []string         `json:"path_components"`
	Type   Dialect          `json:"pattern_type"`
	Value  string           `json:"pattern_value,omitempty"`
	Tags   []string         `json:"tags,omitempty"`
	Impact tags.ImpactLevel `json:"impact,omitempty"`
}

// Prefix renders the trail as a slash separated path.
func (p Pattern) Prefix() string { return strings.Join(p.Trail, "/") }

// HierarchicalTag derives the tag from the trail.
func (p Pattern) HierarchicalTag() tags.HierarchicalTag { return tags.FromPath(p.Trail) }

// IsNewAddition reports whether p matches additions under its trail.
func (p Pattern) IsNewAddition() bool { return p.Type == NewAddition }

// String renders p in the registry list-item form.
func (p Pattern) String() string {
	prefix := p.Prefix()
	if prefix != "" {
		prefix += " "
	}
	switch p.Type {
	case NewAddition:
		return prefix + "++"
	case Dir:
		return prefix + "dir:" + p.Value
	case File:
		return prefix + "file:" + p.Value
	case Extension:
		return prefix + "files('" + p.Value + "')"
	case EndsWith:
		return prefix + "endsWith('" + p.Value + "', file)"
	case Includes:
		return prefix + "includes('" + p.Value + "', file, i)"
	default:
		return prefix + p.Value
	}
}

// Registry is the parsed registry of one repository.
type Registry struct {
	// Name is the document stem, e.g. "prebid-js".
	Name        string           `json:"name"`
	RepoURL     string           `json:"repo"`
	Patterns    []Pattern        `json:"patterns"`
	Definitions []map[string]any `json:"definitions,omitempty"`
	Rules       []map[string]any `json:"rules,omitempty"`
	Source      string           `json:"source,omitempty"`
}
