package repoconfig

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// keySep joins mapping paths inside a keyOrder.
const keySep = "\x1f"

// keyOrder records the key order of every mapping in a document, keyed by
// the mapping's path. Go maps lose the order that category and version
// override evaluation depends on.
type keyOrder map[string][]string

func orderPath(parts ...string) string { return strings.Join(parts, keySep) }

// keys returns the recorded order of the mapping at path.
func (k keyOrder) keys(parts ...string) []string { return k[orderPath(parts...)] }

// sub re-roots k below prefix.
func (k keyOrder) sub(prefix string) keyOrder {
	out := keyOrder{}
	for p, ks := range k {
		if p == prefix {
			out[""] = ks
			continue
		}
		if rest, ok := strings.CutPrefix(p, prefix+keySep); ok {
			out[rest] = ks
		}
	}
	return out
}

// mergeOrder combines base and child order hints: base keys first, then
// keys only the child introduces.
func mergeOrder(base, child keyOrder) keyOrder {
	out := keyOrder{}
	for p, ks := range base {
		out[p] = append([]string(nil), ks...)
	}
	for p, ks := range child {
		seen := make(map[string]bool, len(out[p]))
		for _, k := range out[p] {
			seen[k] = true
		}
		for _, k := range ks {
			if !seen[k] {
				out[p] = append(out[p], k)
				seen[k] = true
			}
		}
	}
	return out
}

// orderedKeys returns the keys of m, ordered by hint first and the rest sorted.
func orderedKeys[V any](m map[string]V, hint []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range hint {
		if _, ok := m[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// rawDocument is a decoded configuration file before inheritance is resolved.
type rawDocument struct {
	Path  string
	Data  map[string]any
	Order keyOrder
}

// readDocument reads a JSON or YAML document from disk.
func readDocument(path string) (*rawDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDocument(path, b)
}

func parseDocument(path string, b []byte) (*rawDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc := &rawDocument{Path: path, Data: map[string]any{}, Order: keyOrder{}}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse %s: top level must be an object", path)
	}
	if err := top.Decode(&doc.Data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	recordOrder(top, "", doc.Order)
	return doc, nil
}

func recordOrder(n *yaml.Node, path string, into keyOrder) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		keys = append(keys, k)
		child := k
		if path != "" {
			child = path + keySep + k
		}
		recordOrder(n.Content[i+1], child, into)
	}
	into[path] = keys
}
