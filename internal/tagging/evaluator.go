// Package tagging evaluates changed files against registry patterns and
// structure classification, producing hierarchical tags and impact levels.
package tagging

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/repotag/internal/changeset"
	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/registry"
	"git.home.luguber.info/inful/repotag/internal/tags"
)

// Match is a registry pattern that matched a path.
type Match struct {
	Pattern       registry.Pattern     `json:"pattern"`
	IsNewAddition bool                 `json:"is_new_addition"`
	Tag           tags.HierarchicalTag `json:"hierarchical_tag"`
}

// Evaluator matches paths against registry patterns. It is safe for
// concurrent use.
type Evaluator struct {
	matcher *pattern.Matcher
}

// NewEvaluator returns an Evaluator sharing matcher's glob cache. A nil
// matcher gets a private one.
func NewEvaluator(matcher *pattern.Matcher) *Evaluator {
	if matcher == nil {
		matcher = pattern.NewMatcher()
	}
	return &Evaluator{matcher: matcher}
}

// Evaluate returns the patterns matching path, in pattern order.
func (e *Evaluator) Evaluate(path string, patterns []registry.Pattern, status changeset.Status) []Match {
	var out []Match
	for _, p := range patterns {
		if m, ok := e.match(path, p, status); ok {
			out = append(out, m)
		}
	}
	return out
}

func (e *Evaluator) match(path string, p registry.Pattern, status changeset.Status) (Match, bool) {
	prefix := p.Prefix()
	if !isUnder(path, prefix) {
		return Match{}, false
	}
	m := Match{Pattern: p, Tag: p.HierarchicalTag()}
	switch p.Type {
	case registry.NewAddition:
		m.IsNewAddition = status == changeset.StatusAdded
		return m, true
	case registry.Dir:
		return m, p.Value != "" && isUnder(path, joinPath(prefix, p.Value))
	case registry.File:
		if p.Value == "" {
			return m, false
		}
		if strings.Contains(p.Value, "*") {
			return m, e.glob(baseName(path), p.Value)
		}
		if prefix == "" {
			return m, path == p.Value || baseName(path) == p.Value
		}
		return m, path == joinPath(prefix, p.Value)
	case registry.Extension:
		return m, p.Value != "" && strings.HasSuffix(path, p.Value)
	case registry.EndsWith:
		return m, p.Value != "" && strings.HasSuffix(baseName(path), p.Value)
	case registry.Includes:
		fold := cases.Fold()
		return m, p.Value != "" && strings.Contains(fold.String(path), fold.String(p.Value))
	case registry.LiteralPath:
		return m, p.Value != "" && e.glob(path, joinPath(prefix, p.Value))
	}
	return m, false
}

// glob treats a malformed glob as a miss so the remaining patterns still apply.
func (e *Evaluator) glob(path, pat string) bool {
	ok, err := e.matcher.Glob(path, pat)
	return err == nil && ok
}

// DetermineImpact picks the highest impact among the labels attached to
// matches and the defaults implied by their trails. Without candidates the
// impact is medium.
func DetermineImpact(matches []Match, status changeset.Status) tags.ImpactLevel {
	var candidates []tags.ImpactLevel
	for _, m := range matches {
		if m.Pattern.Impact != tags.ImpactUnset {
			candidates = append(candidates, m.Pattern.Impact)
		}
		candidates = append(candidates, trailImpact(m.Pattern.Trail))
		if status == changeset.StatusAdded && m.IsNewAddition && isCriticalRoot(m.Pattern.Trail) {
			candidates = append(candidates, tags.ImpactHigh)
		}
	}
	if level := tags.Max(candidates...); level != tags.ImpactUnset {
		return level
	}
	return tags.ImpactMedium
}

// trailImpact is the default impact of a trail's top-level area.
func trailImpact(trail []string) tags.ImpactLevel {
	if len(trail) == 0 {
		return tags.ImpactUnset
	}
	switch trail[0] {
	case "build":
		return tags.ImpactHigh
	case "source":
		if slices.Contains(trail, "core") {
			return tags.ImpactHigh
		}
		return tags.ImpactMedium
	case "testing":
		return tags.ImpactLow
	case "docs":
		return tags.ImpactMinimal
	}
	return tags.ImpactUnset
}

func isCriticalRoot(trail []string) bool {
	return len(trail) > 0 && (trail[0] == "source" || trail[0] == "build")
}

// ModuleRef is the module a matched file belongs to, derived from a trail
// running through "modules".
type ModuleRef struct {
	Type string `json:"module_type,omitempty"`
	Name string `json:"module_name,omitempty"`
}

// ExtractModuleInfo derives the module type from the trail segment after
// "modules" and the module name from the file name. Trails outside
// "modules" yield a zero ModuleRef.
func ExtractModuleInfo(path string, p registry.Pattern) ModuleRef {
	idx := slices.Index(p.Trail, "modules")
	if idx < 0 {
		return ModuleRef{}
	}
	var ref ModuleRef
	if idx+1 < len(p.Trail) {
		ref.Type = p.Trail[idx+1]
	}
	ref.Name = pattern.Stem(path)
	if p.Type == registry.EndsWith && p.Value != "" {
		if name, ok := strings.CutSuffix(ref.Name, p.Value); ok {
			ref.Name = name
		} else if name, ok := strings.CutSuffix(baseName(path), p.Value); ok {
			ref.Name = name
		}
	}
	return ref
}

// isUnder reports whether path equals prefix or lies below it. An empty
// prefix contains every path.
func isUnder(path, prefix string) bool {
	path = strings.Trim(path, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func joinPath(prefix, value string) string {
	if prefix == "" {
		return value
	}
	return prefix + "/" + value
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
