package repoconfig

import (
	"strings"
)

// normalizeLegacy rewrites legacy field spellings onto the current ones in
// place. Current spellings win when both are present.
func normalizeLegacy(data map[string]any) {
	renameKey(data, "default_detection_strategy", "detection_strategy")

	if _, ok := data["paths"]; !ok {
		paths := map[string]any{}
		for legacy, current := range map[string]string{
			"core_paths":    "core",
			"test_paths":    "test",
			"doc_paths":     "docs",
			"exclude_paths": "exclude",
		} {
			if v, ok := data[legacy]; ok {
				paths[current] = v
				delete(data, legacy)
			}
		}
		if len(paths) > 0 {
			data["paths"] = paths
		}
	}

	if cats, ok := data["module_categories"].(map[string]any); ok {
		normalizeCategories(cats)
	}
	if overrides, ok := data["version_overrides"].(map[string]any); ok {
		for _, ov := range overrides {
			if m, ok := ov.(map[string]any); ok {
				if cats, ok := m["module_categories"].(map[string]any); ok {
					normalizeCategories(cats)
				}
			}
		}
	}
	if configs, ok := data["version_configs"].([]any); ok {
		for _, vc := range configs {
			if m, ok := vc.(map[string]any); ok {
				if cats, ok := m["module_categories"].(map[string]any); ok {
					normalizeCategories(cats)
				}
			}
		}
	}
	if rels, ok := data["relationships"].([]any); ok {
		for _, r := range rels {
			if m, ok := r.(map[string]any); ok {
				renameKey(m, "relationship_type", "type")
				renameKey(m, "target_repo", "target")
			}
		}
	}
}

func normalizeCategories(cats map[string]any) {
	for _, c := range cats {
		cat, ok := c.(map[string]any)
		if !ok {
			continue
		}
		patterns, ok := cat["patterns"].([]any)
		if !ok {
			continue
		}
		for _, p := range patterns {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			renameKey(m, "pattern_type", "type")
			renameKey(m, "exclude", "exclude_patterns")
			if t, ok := m["type"].(string); ok {
				m["type"] = strings.ToLower(strings.TrimSpace(t))
			}
		}
	}
}

func renameKey(m map[string]any, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	delete(m, from)
	if _, exists := m[to]; !exists {
		m[to] = v
	}
}
