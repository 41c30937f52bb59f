package repoconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/knadh/koanf/maps"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

const (
	sharedDir    = "shared"
	baseFileName = "common-base.yaml"
)

// MigrationResult lists the documents written by Migrate, relative to the target.
type MigrationResult struct {
	Master       string
	Base         string
	Repositories []string
}

// Migrate converts a legacy single-file map of repositories into a
// multi-file tree below target:
//
//	repositories.json                      master list
//	repositories/shared/common-base.yaml   categories shared by several repositories
//	repositories/<owner>/<repo>.yaml       one document per repository
//
// Categories defined identically by more than one repository move their
// display name and patterns into the shared base; repository documents keep
// the rest.
func Migrate(source, target string) (*MigrationResult, error) {
	doc, err := readDocument(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(source)
		}
		return nil, errors.ConfigLoadFailed(source, err)
	}

	type legacyRepo struct {
		name  string
		data  map[string]any
		order keyOrder
	}
	var repos []legacyRepo
	for _, name := range orderedKeys(doc.Data, doc.Order.keys()) {
		entry, ok := doc.Data[name].(map[string]any)
		if !ok || strings.HasPrefix(name, "$") {
			continue
		}
		data := maps.Copy(entry)
		normalizeLegacy(data)
		repos = append(repos, legacyRepo{name: name, data: data, order: doc.Order.sub(name)})
	}
	if len(repos) == 0 {
		return nil, errors.ConfigValidationFailed(source, []string{"no repository definitions found"})
	}

	// categories defined identically by at least two repositories
	defs := map[string][]map[string]any{}
	for _, r := range repos {
		cats, _ := r.data["module_categories"].(map[string]any)
		for name, c := range cats {
			if cat, ok := c.(map[string]any); ok {
				defs[name] = append(defs[name], map[string]any{
					"display_name": cat["display_name"],
					"patterns":     cat["patterns"],
				})
			}
		}
	}
	baseCats := map[string]any{}
	var baseOrder []string
	for _, r := range repos {
		cats, _ := r.data["module_categories"].(map[string]any)
		for _, name := range orderedKeys(cats, r.order.keys("module_categories")) {
			cat, ok := cats[name].(map[string]any)
			if !ok || baseCats[name] != nil || !sharedDefinition(defs[name]) {
				continue
			}
			shared := map[string]any{"patterns": cat["patterns"]}
			if dn, ok := cat["display_name"]; ok {
				shared["display_name"] = dn
			}
			baseCats[name] = orderedMap(shared, []string{"display_name", "patterns"})
			baseOrder = append(baseOrder, name)
		}
	}

	reposDir := filepath.Join(target, RepositoriesDir)
	result := &MigrationResult{Master: MasterFileName}
	var baseRel string
	if len(baseCats) > 0 {
		baseRel = filepath.ToSlash(filepath.Join(RepositoriesDir, sharedDir, baseFileName))
		base := ordered{
			{"description", "Shared module categories"},
			{"module_categories", orderedMap(baseCats, baseOrder)},
		}
		if err := writeYAML(filepath.Join(target, baseRel), base); err != nil {
			return nil, err
		}
		result.Base = baseRel
	}

	for _, r := range repos {
		group, file := migrationPath(r.name)
		out := ordered{{"repo_name", r.name}}
		for _, key := range []string{"repo_type", "description"} {
			if v, ok := r.data[key]; ok {
				out = append(out, kv{key, v})
			}
		}
		if baseRel != "" {
			out = append(out, kv{"extends", "../" + sharedDir + "/" + baseFileName})
		}
		for _, key := range []string{"detection_strategy", "fetch_strategy"} {
			if v, ok := r.data[key]; ok {
				out = append(out, kv{key, v})
			}
		}
		if cats, ok := r.data["module_categories"].(map[string]any); ok {
			catOrder := r.order.keys("module_categories")
			outCats := ordered{}
			for _, name := range orderedKeys(cats, catOrder) {
				cat, _ := cats[name].(map[string]any)
				if baseCats[name] != nil {
					cat = maps.Copy(cat)
					delete(cat, "display_name")
					delete(cat, "patterns")
				}
				outCats = append(outCats, kv{name, orderedValue(cat, r.order, "module_categories", name)})
			}
			out = append(out, kv{"module_categories", outCats})
		}
		if overrides := migrateVersionConfigs(r.data); len(overrides) > 0 {
			out = append(out, kv{"version_overrides", overrides})
		} else if v, ok := r.data["version_overrides"]; ok {
			out = append(out, kv{"version_overrides", orderedValue(v, r.order, "version_overrides")})
		}
		for _, key := range []string{"default_version", "paths", "relationships", "metadata"} {
			if v, ok := r.data[key]; ok {
				out = append(out, kv{key, orderedValue(v, r.order, key)})
			}
		}

		rel := filepath.ToSlash(filepath.Join(RepositoriesDir, group, file))
		if err := writeYAML(filepath.Join(target, rel), out); err != nil {
			return nil, err
		}
		result.Repositories = append(result.Repositories, rel)
	}
	slices.Sort(result.Repositories)

	master := map[string]any{
		"description":  "Repository structure documents",
		"repositories": result.Repositories,
	}
	b, err := json.MarshalIndent(master, "", "  ")
	if err != nil {
		return nil, errors.InternalError("encode master file", err)
	}
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		return nil, errors.InternalError("create target directory", err)
	}
	if err := os.WriteFile(filepath.Join(target, MasterFileName), append(b, '\n'), 0o600); err != nil {
		return nil, errors.InternalError("write master file", err)
	}
	return result, nil
}

// sharedDefinition reports whether a category has two or more identical
// definitions with at least one pattern.
func sharedDefinition(defs []map[string]any) bool {
	if len(defs) < 2 {
		return false
	}
	if patterns, _ := defs[0]["patterns"].([]any); len(patterns) == 0 {
		return false
	}
	for _, d := range defs[1:] {
		if !reflect.DeepEqual(d, defs[0]) {
			return false
		}
	}
	return true
}

// migrateVersionConfigs turns a legacy version_configs list into
// version_overrides keyed by label, with "+" marking open-ended ranges.
func migrateVersionConfigs(data map[string]any) ordered {
	list, _ := data["version_configs"].([]any)
	var out ordered
	for _, item := range list {
		vc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		key, _ := vc["version"].(string)
		rng, _ := vc["version_range"].(string)
		entry := ordered{}
		if strings.HasPrefix(rng, ">=") && !strings.Contains(rng, ",") {
			key += "+"
		} else if rng != "" {
			entry = append(entry, kv{"version_range", rng})
		}
		if cats, ok := vc["module_categories"]; ok {
			entry = append(entry, kv{"module_categories", orderedValue(cats, nil)})
		}
		for _, k := range []string{"metadata_path", "metadata_pattern", "notes"} {
			if v, ok := vc[k]; ok {
				entry = append(entry, kv{k, v})
			}
		}
		out = append(out, kv{key, entry})
	}
	return out
}

// migrationPath maps "owner/Repo.js" to ("owner", "repo-js.yaml").
func migrationPath(name string) (group, file string) {
	group = "other"
	rest := name
	if owner, repo, ok := strings.Cut(name, "/"); ok && owner != "" {
		group, rest = strings.ToLower(owner), repo
	}
	slug := strings.NewReplacer("/", "-", ".", "-", " ", "-").Replace(strings.ToLower(rest))
	return group, slug + ".yaml"
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.InternalError("create directory", err)
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return errors.InternalError(fmt.Sprintf("encode %s", path), err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return errors.InternalError(fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// kv and ordered encode a mapping with a fixed key order.
type kv struct {
	Key   string
	Value any
}

type ordered []kv

// MarshalYAML implements yaml.Marshaler.
func (o ordered) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range o {
		var val yaml.Node
		if err := val.Encode(e.Value); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}, &val)
	}
	return n, nil
}

func orderedMap(m map[string]any, hint []string) ordered {
	out := make(ordered, 0, len(m))
	for _, k := range orderedKeys(m, hint) {
		out = append(out, kv{k, m[k]})
	}
	return out
}

// orderedValue converts nested maps into ordered mappings using the recorded
// key order at path.
func orderedValue(v any, order keyOrder, path ...string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(ordered, 0, len(t))
		for _, k := range orderedKeys(t, order.keys(path...)) {
			out = append(out, kv{k, orderedValue(t[k], order, append(slices.Clone(path), k)...)})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = orderedValue(e, nil)
		}
		return out
	default:
		return v
	}
}
