package repoconfig

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/pattern"
)

// Report is the validation outcome of one document.
type Report struct {
	Path   string   `json:"path"`
	Issues []string `json:"issues,omitempty"`
}

// Valid reports whether no issues were found.
func (r Report) Valid() bool { return len(r.Issues) == 0 }

// Validator checks configuration documents without building structures.
type Validator struct {
	logger *slog.Logger
}

// NewValidator returns a Validator logging through logger (slog.Default when nil).
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// ValidateFile checks a single document: its inheritance chain, required
// fields, field values and pattern consistency of the merged result.
// Partial base documents (file name containing "base") skip the required
// field check.
func (v *Validator) ValidateFile(path string) Report {
	report := Report{Path: path}
	report.Issues = append(report.Issues, v.ValidateInheritance(path)...)

	loader := NewLoader(path, WithLogger(v.logger))
	data, _, err := loader.resolve(path, nil)
	if err != nil {
		report.Issues = append(report.Issues, err.Error())
		return report
	}
	isBase := strings.Contains(filepath.Base(path), "base")

	if _, hasName := data["repo_name"]; !hasName && !isBase && looksLikeLegacyMap(data) {
		for _, name := range sortedKeys(data) {
			entry, ok := data[name].(map[string]any)
			if !ok || strings.HasPrefix(name, "$") {
				continue
			}
			if _, ok := entry["repo_name"]; !ok {
				entry["repo_name"] = name
			}
			for _, issue := range v.checkRepository(entry, false) {
				report.Issues = append(report.Issues, name+": "+issue)
			}
		}
		return report
	}
	report.Issues = append(report.Issues, v.checkRepository(data, isBase)...)
	return report
}

func (v *Validator) checkRepository(data map[string]any, partial bool) []string {
	var issues []string
	normalizeLegacy(data)
	if !partial {
		issues = append(issues, CheckRequiredFields(data)...)
		doc, err := decodeDocument(data)
		if err != nil {
			return append(issues, err.Error())
		}
		for _, issue := range validationIssues(doc) {
			if !slices.Contains(issues, issue) {
				issues = append(issues, issue)
			}
		}
	}
	return append(issues, CheckPatternConsistency(data)...)
}

// ValidateDirectory validates every document below dir, skipping schema paths.
func (v *Validator) ValidateDirectory(dir string) ([]Report, error) {
	var reports []Report
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsDocumentFile(path) {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		if strings.Contains(rel, "schema") || d.Name() == MasterFileName {
			return nil
		}
		r := v.ValidateFile(path)
		if r.Valid() {
			v.logger.Info("Validation passed", logfields.ConfigPath(path))
		} else {
			v.logger.Error("Validation failed", logfields.ConfigPath(path), logfields.Count(len(r.Issues)))
		}
		reports = append(reports, r)
		return nil
	})
	return reports, err
}

// ValidateInheritance follows the extends chain of path and reports cycles,
// missing bases and unreadable documents.
func (v *Validator) ValidateInheritance(path string) []string {
	var issues []string
	var visited []string
	current := path
	for {
		abs, err := filepath.Abs(current)
		if err != nil {
			return append(issues, err.Error())
		}
		if slices.Contains(visited, abs) {
			return append(issues, fmt.Sprintf("circular inheritance detected: %s", strings.Join(append(visited, abs), " -> ")))
		}
		visited = append(visited, abs)
		doc, err := readDocument(abs)
		if err != nil {
			return append(issues, fmt.Sprintf("error reading %s: %v", abs, err))
		}
		ext, _ := doc.Data["extends"].(string)
		if ext == "" {
			return issues
		}
		next := filepath.Join(filepath.Dir(abs), ext)
		if _, err := os.Stat(next); err != nil {
			return append(issues, fmt.Sprintf("base config not found: %s", next))
		}
		current = next
	}
}

// CheckRequiredFields lists the required top-level fields missing from data.
func CheckRequiredFields(data map[string]any) []string {
	var missing []string
	for _, field := range []string{"repo_name", "repo_type", "module_categories"} {
		if _, ok := data[field]; !ok {
			missing = append(missing, fmt.Sprintf("%s: required", field))
		}
	}
	return missing
}

// CheckPatternConsistency reports categories without patterns, duplicate
// patterns and patterns that break their dialect contract.
func CheckPatternConsistency(data map[string]any) []string {
	var issues []string
	check := func(scope string, cats map[string]any) {
		for _, name := range sortedKeys(cats) {
			cat, ok := cats[name].(map[string]any)
			if !ok {
				continue
			}
			patterns, _ := cat["patterns"].([]any)
			if len(patterns) == 0 {
				issues = append(issues, fmt.Sprintf("%scategory %q has no patterns defined", scope, name))
				continue
			}
			seen := map[string]bool{}
			reported := map[string]bool{}
			for _, p := range patterns {
				m, ok := p.(map[string]any)
				if !ok {
					issues = append(issues, fmt.Sprintf("%scategory %q has a pattern that is not an object", scope, name))
					continue
				}
				raw, _ := m["pattern"].(string)
				typ, _ := m["type"].(string)
				if seen[raw] && !reported[raw] {
					issues = append(issues, fmt.Sprintf("%sduplicate pattern in %q: %s", scope, name, raw))
					reported[raw] = true
				}
				seen[raw] = true

				d, err := pattern.ParseDialect(typ)
				if err != nil {
					issues = append(issues, fmt.Sprintf("%scategory %q: %v", scope, name, err))
					continue
				}
				if err := (pattern.Pattern{Pattern: raw, Type: d}).Check(); err != nil {
					issues = append(issues, fmt.Sprintf("%scategory %q: %s pattern %q violates its contract", scope, name, d, raw))
				}
				excludes, _ := m["exclude_patterns"].([]any)
				for _, ex := range excludes {
					if exs, ok := ex.(string); ok {
						if err := pattern.CheckGlob(exs); err != nil {
							issues = append(issues, fmt.Sprintf("%scategory %q: invalid exclude pattern %q", scope, name, exs))
						}
					}
				}
			}
		}
	}
	if cats, ok := data["module_categories"].(map[string]any); ok {
		check("", cats)
	}
	if paths, ok := data["paths"].(map[string]any); ok {
		for _, kind := range sortedKeys(paths) {
			entries, _ := paths[kind].([]any)
			for _, e := range entries {
				if p, ok := e.(string); ok && strings.Contains(p, "*") {
					if err := pattern.CheckGlob(p); err != nil {
						issues = append(issues, fmt.Sprintf("paths.%s: invalid glob %q", kind, p))
					}
				}
			}
		}
	}
	if overrides, ok := data["version_overrides"].(map[string]any); ok {
		for _, key := range sortedKeys(overrides) {
			if m, ok := overrides[key].(map[string]any); ok {
				if cats, ok := m["module_categories"].(map[string]any); ok {
					check("version "+key+": ", cats)
				}
			}
		}
	}
	return issues
}

// looksLikeLegacyMap reports whether every non-$ top-level value is an object.
func looksLikeLegacyMap(data map[string]any) bool {
	n := 0
	for k, val := range data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if _, ok := val.(map[string]any); !ok {
			return false
		}
		n++
	}
	return n > 0
}

func sortedKeys[V any](m map[string]V) []string {
	return orderedKeys(m, nil)
}
