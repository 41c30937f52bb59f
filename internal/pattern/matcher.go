// Package pattern implements path pattern matching for module categorisation.
//
// A Matcher evaluates a Pattern against a repository-relative path using one
// of five dialects. Compiled regexes, translated globs and match results are
// memoized in bounded LRU caches keyed by their literal inputs.
package pattern

import (
	"regexp"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

const (
	DefaultMatchCacheSize = 256
	DefaultRegexCacheSize = 128
)

type matchKey struct {
	path    string
	pattern string
	dialect Dialect
}

// Matcher matches paths against patterns. It is safe for concurrent use.
type Matcher struct {
	matches *lru.Cache[matchKey, bool]
	regexes *lru.Cache[string, *regexp.Regexp]
	globs   *lru.Cache[string, *regexp.Regexp]
}

// Option configures a Matcher.
type Option func(*matcherOptions)

type matcherOptions struct {
	matchSize int
	regexSize int
}

// WithMatchCacheSize bounds the (path, pattern) result cache.
func WithMatchCacheSize(n int) Option {
	return func(o *matcherOptions) { o.matchSize = n }
}

// WithRegexCacheSize bounds the compiled regex and glob caches.
func WithRegexCacheSize(n int) Option {
	return func(o *matcherOptions) { o.regexSize = n }
}

// NewMatcher returns a Matcher with bounded caches. Non-positive sizes fall
// back to the defaults.
func NewMatcher(opts ...Option) *Matcher {
	o := matcherOptions{matchSize: DefaultMatchCacheSize, regexSize: DefaultRegexCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.matchSize <= 0 {
		o.matchSize = DefaultMatchCacheSize
	}
	if o.regexSize <= 0 {
		o.regexSize = DefaultRegexCacheSize
	}
	// lru.New only fails for non-positive sizes.
	m, _ := lru.New[matchKey, bool](o.matchSize)
	r, _ := lru.New[string, *regexp.Regexp](o.regexSize)
	g, _ := lru.New[string, *regexp.Regexp](o.regexSize)
	return &Matcher{matches: m, regexes: r, globs: g}
}

// Matches reports whether path matches p. Exclusion patterns are evaluated
// first with glob semantics and win over any match. A pattern that violates
// its dialect contract yields an InvalidPattern error.
func (m *Matcher) Matches(path string, p Pattern) (bool, error) {
	for _, ex := range p.ExcludePatterns {
		excluded, err := m.Glob(path, ex)
		if err != nil {
			return false, err
		}
		if excluded {
			return false, nil
		}
	}
	key := matchKey{path: path, pattern: p.Pattern, dialect: p.Dialect()}
	if v, ok := m.matches.Get(key); ok {
		return v, nil
	}
	ok, err := m.match(path, p)
	if err != nil {
		return false, err
	}
	m.matches.Add(key, ok)
	return ok, nil
}

func (m *Matcher) match(path string, p Pattern) (bool, error) {
	switch p.Dialect() {
	case Suffix:
		suffix, ok := strings.CutPrefix(p.Pattern, "*")
		if !ok {
			return false, errors.InvalidPattern(p.Pattern, "suffix pattern must start with '*'")
		}
		return strings.HasSuffix(path, suffix), nil
	case Prefix:
		prefix, ok := strings.CutSuffix(p.Pattern, "*")
		if !ok {
			return false, errors.InvalidPattern(p.Pattern, "prefix pattern must end with '*'")
		}
		return strings.HasPrefix(baseName(path), prefix), nil
	case Regex:
		re, err := m.compileRegex(p.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(path), nil
	case Directory:
		return matchDirectory(path, p.Pattern), nil
	case Glob:
		return m.Glob(path, p.Pattern)
	default:
		return false, errors.InvalidPattern(p.Pattern, "unknown pattern type "+string(p.Type))
	}
}

// Glob reports whether path matches the shell glob pat over the full path.
// A malformed glob yields an InvalidPattern error.
func (m *Matcher) Glob(path, pat string) (bool, error) {
	re, ok := m.globs.Get(pat)
	if !ok {
		var err error
		if re, err = compileGlob(pat); err != nil {
			return false, err
		}
		m.globs.Add(pat, re)
	}
	return re.MatchString(path), nil
}

func (m *Matcher) compileRegex(expr string) (*regexp.Regexp, error) {
	if re, ok := m.regexes.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.InvalidPatternCause(expr, err)
	}
	m.regexes.Add(expr, re)
	return re, nil
}

func matchDirectory(path, pat string) bool {
	if dir, ok := strings.CutSuffix(pat, "/**/*"); ok {
		return strings.HasPrefix(path, dir+"/")
	}
	if dir, ok := strings.CutSuffix(pat, "/*"); ok {
		return strings.HasPrefix(path, dir+"/")
	}
	parts := strings.Split(path, "/")
	return slices.Contains(parts[:len(parts)-1], pat)
}

// compileCheck validates the dialect contract of p without a path.
func compileCheck(p Pattern) (Dialect, error) {
	d := p.Dialect()
	switch d {
	case Suffix:
		if !strings.HasPrefix(p.Pattern, "*") {
			return d, errors.InvalidPattern(p.Pattern, "suffix pattern must start with '*'")
		}
	case Prefix:
		if !strings.HasSuffix(p.Pattern, "*") {
			return d, errors.InvalidPattern(p.Pattern, "prefix pattern must end with '*'")
		}
	case Regex:
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return d, errors.InvalidPatternCause(p.Pattern, err)
		}
	case Glob:
		if err := CheckGlob(p.Pattern); err != nil {
			return d, err
		}
	case Directory:
	default:
		return d, errors.InvalidPattern(p.Pattern, "unknown pattern type "+string(p.Type))
	}
	for _, ex := range p.ExcludePatterns {
		if err := CheckGlob(ex); err != nil {
			return d, err
		}
	}
	return d, nil
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
