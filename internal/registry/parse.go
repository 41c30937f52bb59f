package registry

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/pattern"
	"git.home.luguber.info/inful/repotag/internal/tags"
)

var (
	extensionCall = regexp.MustCompile(`files\(['"](.+?)['"]\)`)
	endsWithCall  = regexp.MustCompile(`endsWith\(['"](.+?)['"]\s*,`)
	includesCall  = regexp.MustCompile(`includes\(['"](.+?)['"]\s*,`)
)

// leafMeta is the tags/impact payload attached to a leaf.
type leafMeta struct {
	Tags   []string
	Impact tags.ImpactLevel
}

// parser flattens a structure tree into patterns. Malformed leaves are
// logged and skipped.
type parser struct {
	logger *slog.Logger
	source string
	out    []Pattern
}

// ParseStructure flattens the structure tree rooted at node.
func ParseStructure(node *yaml.Node, logger *slog.Logger) []Pattern {
	return parseStructure(node, "", logger)
}

func parseStructure(node *yaml.Node, source string, logger *slog.Logger) []Pattern {
	if logger == nil {
		logger = slog.Default()
	}
	p := &parser{logger: logger, source: source}
	p.walk(node, nil)
	return slices.DeleteFunc(p.out, p.malformed)
}

// malformed reports wildcard file and path values that are not valid globs.
func (p *parser) malformed(pat Pattern) bool {
	if pat.Type != File && pat.Type != LiteralPath || !strings.Contains(pat.Value, "*") {
		return false
	}
	if err := pattern.CheckGlob(pat.Value); err != nil {
		p.logger.Warn("Skipping malformed registry glob",
			logfields.Pattern(pat.Value),
			logfields.ConfigPath(p.source),
			logfields.Error(err))
		return true
	}
	return false
}

func (p *parser) add(trail []string, d Dialect, value string, meta leafMeta) {
	p.out = append(p.out, Pattern{
		Trail:  slices.Clone(trail),
		Type:   d,
		Value:  value,
		Tags:   meta.Tags,
		Impact: meta.Impact,
	})
}

func (p *parser) skip(trail []string, key string, reason string) {
	p.logger.Debug("Skipping registry leaf",
		logfields.Path(strings.Join(append(slices.Clone(trail), key), "/")),
		slog.String("reason", reason),
		logfields.ConfigPath(p.source))
}

func (p *parser) walk(node *yaml.Node, trail []string) {
	node = resolve(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])
		if value == nil {
			continue
		}
		if d, ok := leafDialect(key); ok {
			p.leaf(trail, key, d, value)
			continue
		}
		segment := append(slices.Clone(trail), key)
		switch value.Kind {
		case yaml.MappingNode:
			p.walk(value, segment)
		case yaml.SequenceNode:
			for _, item := range value.Content {
				p.item(segment, "", resolve(item))
			}
		case yaml.ScalarNode:
			if isNull(value) {
				continue
			}
			p.item(segment, "", value)
		}
	}
}

// leaf handles a value stored under a dialect key.
func (p *parser) leaf(trail []string, key string, d Dialect, value *yaml.Node) {
	switch value.Kind {
	case yaml.MappingNode:
		if isMetaOnly(value) {
			if d != NewAddition {
				p.skip(trail, key, "dialect needs a value")
				return
			}
			p.add(trail, d, "", p.meta(value))
			return
		}
		for i := 0; i+1 < len(value.Content); i += 2 {
			sub := value.Content[i].Value
			subValue := resolve(value.Content[i+1])
			switch {
			case subValue.Kind == yaml.MappingNode:
				p.add(trail, d, sub, p.meta(subValue))
			case isNull(subValue):
				p.add(trail, d, sub, leafMeta{})
			default:
				p.skip(trail, key+"/"+sub, "unrecognized value shape")
			}
		}
	case yaml.SequenceNode:
		for _, item := range value.Content {
			p.item(trail, d, resolve(item))
		}
	case yaml.ScalarNode:
		switch {
		case d == NewAddition:
			p.add(trail, d, "", leafMeta{})
		case isNull(value):
			p.skip(trail, key, "dialect needs a value")
		default:
			p.add(trail, d, value.Value, leafMeta{})
		}
	default:
		p.skip(trail, key, "unrecognized value shape")
	}
}

// item handles one list element. Inside a dialect key, plain strings take
// that dialect unless they use an explicit form; elsewhere the string form
// decides the dialect.
func (p *parser) item(trail []string, d Dialect, node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		if pat, ok := ParseItem(node.Value, trail); ok && (d == "" || explicitForm(node.Value)) {
			p.out = append(p.out, pat)
			return
		}
		if d != "" && node.Value != "" {
			p.add(trail, d, node.Value, leafMeta{})
			return
		}
		p.skip(trail, node.Value, "unrecognized pattern string")
	case yaml.MappingNode:
		name := mappingValue(node, "name")
		if name == nil || name.Value == "" {
			p.skip(trail, "", "list object without name")
			return
		}
		if d == "" {
			pat, ok := ParseItem(name.Value, trail)
			if !ok {
				p.skip(trail, name.Value, "unrecognized pattern string")
				return
			}
			meta := p.meta(node)
			pat.Tags, pat.Impact = meta.Tags, meta.Impact
			p.out = append(p.out, pat)
			return
		}
		p.add(trail, d, name.Value, p.meta(node))
	default:
		p.skip(trail, "", "unrecognized list item")
	}
}

func (p *parser) meta(node *yaml.Node) leafMeta {
	var m leafMeta
	if t := mappingValue(node, "tags"); t != nil {
		switch t.Kind {
		case yaml.SequenceNode:
			for _, tag := range t.Content {
				if tag.Kind == yaml.ScalarNode && tag.Value != "" {
					m.Tags = append(m.Tags, tag.Value)
				}
			}
		case yaml.ScalarNode:
			if t.Value != "" {
				m.Tags = []string{t.Value}
			}
		}
	}
	if v := mappingValue(node, "impact"); v != nil && v.Value != "" {
		level, err := tags.ParseImpact(v.Value)
		if err != nil {
			p.logger.Warn("Ignoring unknown impact label", slog.String("impact", v.Value), logfields.ConfigPath(p.source))
		} else {
			m.Impact = level
		}
	}
	return m
}

// ParseItem parses the string form of a leaf: "++", "dir:<x>", "file:<x>",
// files('.ext'), endsWith('x', file), includes('x', file, i) or a literal
// path. It reports false for a call form it cannot read.
func ParseItem(s string, trail []string) (Pattern, bool) {
	s = strings.TrimSpace(s)
	pat := Pattern{Trail: slices.Clone(trail)}
	switch {
	case s == "":
		return Pattern{}, false
	case s == "++":
		pat.Type = NewAddition
	case strings.HasPrefix(s, "dir:"):
		pat.Type, pat.Value = Dir, strings.TrimSpace(s[len("dir:"):])
	case strings.HasPrefix(s, "file:"):
		pat.Type, pat.Value = File, strings.TrimSpace(s[len("file:"):])
	case strings.Contains(s, "files("):
		return callForm(pat, Extension, extensionCall, s)
	case strings.Contains(s, "endsWith("):
		return callForm(pat, EndsWith, endsWithCall, s)
	case strings.Contains(s, "includes("):
		return callForm(pat, Includes, includesCall, s)
	default:
		pat.Type, pat.Value = LiteralPath, s
	}
	return pat, true
}

func callForm(pat Pattern, d Dialect, re *regexp.Regexp, s string) (Pattern, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return Pattern{}, false
	}
	pat.Type, pat.Value = d, m[1]
	return pat, true
}

func explicitForm(s string) bool {
	s = strings.TrimSpace(s)
	return s == "++" ||
		strings.HasPrefix(s, "dir:") ||
		strings.HasPrefix(s, "file:") ||
		strings.Contains(s, "files(") ||
		strings.Contains(s, "endsWith(") ||
		strings.Contains(s, "includes(")
}

// isMetaOnly reports whether a mapping carries nothing but tags and impact.
func isMetaOnly(node *yaml.Node) bool {
	for i := 0; i < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "tags", "impact":
		default:
			return false
		}
	}
	return true
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolve(node.Content[i+1])
		}
	}
	return nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && (node.Kind == yaml.DocumentNode || node.Kind == yaml.AliasNode) {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
			continue
		}
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
