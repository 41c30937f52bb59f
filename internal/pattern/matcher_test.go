package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

func TestMatches(t *testing.T) {
	m := NewMatcher()
	tests := []struct {
		name    string
		path    string
		pattern Pattern
		want    bool
	}{
		{"suffix hit", "modules/rubiconBidAdapter.js", Pattern{Pattern: "*BidAdapter.js", Type: Suffix}, true},
		{"suffix miss", "modules/rubiconAnalytics.js", Pattern{Pattern: "*BidAdapter.js", Type: Suffix}, false},
		{"prefix uses final segment", "src/lib/test_utils.py", Pattern{Pattern: "test_*", Type: Prefix}, true},
		{"prefix ignores directories", "test_dir/utils.py", Pattern{Pattern: "test_*", Type: Prefix}, false},
		{"glob crosses slash", "modules/sub/x.js", Pattern{Pattern: "modules/*.js", Type: Glob}, true},
		{"glob question mark", "a1.txt", Pattern{Pattern: "a?.txt"}, true},
		{"glob class", "v2.md", Pattern{Pattern: "v[0-9].md"}, true},
		{"glob negated class", "va.md", Pattern{Pattern: "v[!0-9].md"}, true},
		{"glob negated class miss", "v1.md", Pattern{Pattern: "v[!0-9].md"}, false},
		{"glob unterminated bracket literal", "a[b", Pattern{Pattern: "a[b"}, true},
		{"glob dot is literal", "axjs", Pattern{Pattern: "a.js"}, false},
		{"glob non-ascii literal", "src/ünïcode.js", Pattern{Pattern: "src/ü*.js"}, true},
		{"glob non-ascii question mark", "src/ü.js", Pattern{Pattern: "src/?.js"}, true},
		{"glob non-ascii class", "lib/é.md", Pattern{Pattern: "lib/[éè].md"}, true},
		{"glob class dash literal at end", "a-b", Pattern{Pattern: "a[x-]b"}, true},
		{"regex substring search", "libraries/ortbConverter/converter.js", Pattern{Pattern: `ortb\w+`, Type: Regex}, true},
		{"regex anchored", "x/modules/a.js", Pattern{Pattern: `^modules/`, Type: Regex}, false},
		{"directory star", "modules/x/y.js", Pattern{Pattern: "modules/*", Type: Directory}, true},
		{"directory double star", "modules/x/y.js", Pattern{Pattern: "modules/**/*", Type: Directory}, true},
		{"directory double star miss", "other/modules.js", Pattern{Pattern: "modules/**/*", Type: Directory}, false},
		{"directory bare segment", "src/adapters/a.go", Pattern{Pattern: "adapters", Type: Directory}, true},
		{"directory bare segment not filename", "src/adapters", Pattern{Pattern: "adapters", Type: Directory}, false},
		{"exclusion wins", "modules/fooBidAdapter_spec.js", Pattern{Pattern: "*.js", Type: Suffix, ExcludePatterns: []string{"*_spec.js"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Matches(tt.path, tt.pattern)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			again, err := m.Matches(tt.path, tt.pattern)
			require.NoError(t, err)
			require.Equal(t, got, again, "cached result must be identical")
		})
	}
}

func TestMatchesSuffixProperty(t *testing.T) {
	m := NewMatcher(WithMatchCacheSize(4))
	paths := []string{"a/b.js", "b.js", "x/yb.js", "", "a/b.jsx", "b.js/c"}
	for _, path := range paths {
		got, err := m.Matches(path, Pattern{Pattern: "*b.js", Type: Suffix})
		require.NoError(t, err)
		require.Equal(t, len(path) >= 4 && path[len(path)-4:] == "b.js", got, path)
	}
}

func TestMatchesContractViolations(t *testing.T) {
	m := NewMatcher()
	bad := []Pattern{
		{Pattern: "BidAdapter.js", Type: Suffix},
		{Pattern: "test_", Type: Prefix},
		{Pattern: "(unclosed", Type: Regex},
		{Pattern: "x", Type: Dialect("fuzzy")},
		{Pattern: "*[z-a]*", Type: Glob},
		{Pattern: "*.js", Type: Suffix, ExcludePatterns: []string{"*[z-a]*"}},
	}
	for _, p := range bad {
		_, err := m.Matches("modules/xBidAdapter.js", p)
		require.Error(t, err, p.Pattern)
		require.True(t, errors.IsCategory(err, errors.CategoryInvalidPattern))
		require.Error(t, p.Check())
	}
	require.NoError(t, Pattern{Pattern: "*.js", Type: Suffix}.Check())
}

func TestGlobReversedRange(t *testing.T) {
	m := NewMatcher()
	ok, err := m.Glob("src/a.js", "*[z-a]*")
	require.Error(t, err)
	require.False(t, ok)
	require.True(t, errors.IsCategory(err, errors.CategoryInvalidPattern))
	require.Error(t, CheckGlob("*[z-a]*"))

	// the same matcher keeps working for well-formed globs
	ok, err = m.Glob("src/a.js", "src/[a-z].js")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestScoreTiesCompareEqual(t *testing.T) {
	suffix := Pattern{Pattern: "*BidAdapter.js", Type: Suffix, NameExtraction: "filename"}
	regex := Pattern{Pattern: "BidAdapter", Type: Regex}
	require.Equal(t, Score(suffix), Score(regex))
	require.Equal(t, 0.8, Score(regex))
	require.Equal(t, 1.0, Score(Pattern{Pattern: "x", Type: Regex, NameExtraction: "filename", ExcludePatterns: []string{"y"}}))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("")
	require.NoError(t, err)
	require.Equal(t, Glob, d)

	d, err = ParseDialect(" Suffix ")
	require.NoError(t, err)
	require.Equal(t, Suffix, d)

	_, err = ParseDialect("wildcard")
	require.Error(t, err)
}

func TestBestMatch(t *testing.T) {
	m := NewMatcher()
	ps := []Pattern{
		{Pattern: "modules/*"},
		{Pattern: "*BidAdapter.js", Type: Suffix, NameExtraction: "remove_suffix:BidAdapter"},
		{Pattern: "BidAdapter", Type: Regex},
		{Pattern: "*.js", Type: Suffix, NameExtraction: "filename"},
	}
	best, score, err := m.BestMatch("modules/rubiconBidAdapter.js", ps)
	require.NoError(t, err)
	require.NotNil(t, best)
	// suffix+extraction, regex and *.js all score 0.8; the first seen wins
	require.Equal(t, "*BidAdapter.js", best.Pattern)
	require.Equal(t, 0.8, score)

	best, score, err = m.BestMatch("docs/readme.md", ps)
	require.NoError(t, err)
	require.Nil(t, best)
	require.Zero(t, score)
}

func TestBestMatchSkipsInvalid(t *testing.T) {
	m := NewMatcher()
	ps := []Pattern{{Pattern: "[", Type: Regex}, {Pattern: "*.js"}}
	best, _, err := m.BestMatch("a.js", ps)
	require.Error(t, err)
	require.NotNil(t, best)
	require.Equal(t, "*.js", best.Pattern)
}

func TestScoreCapped(t *testing.T) {
	p := Pattern{Pattern: "x", Type: Regex, NameExtraction: "filename", ExcludePatterns: []string{"y"}}
	require.InDelta(t, 1.0, Score(p), 1e-9)
	require.InDelta(t, 0.5, Score(Pattern{Pattern: "*"}), 1e-9)
}
