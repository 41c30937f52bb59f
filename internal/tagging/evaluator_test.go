package tagging

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/repotag/internal/changeset"
	"git.home.luguber.info/inful/repotag/internal/registry"
	"git.home.luguber.info/inful/repotag/internal/tags"
)

func pat(d registry.Dialect, value string, trail ...string) registry.Pattern {
	return registry.Pattern{Trail: trail, Type: d, Value: value}
}

func TestEvaluateDialects(t *testing.T) {
	e := NewEvaluator(nil)
	tests := []struct {
		name string
		p    registry.Pattern
		path string
		want bool
	}{
		{"new addition under trail", pat(registry.NewAddition, "", "build"), "build/webpack/config.js", true},
		{"new addition outside trail", pat(registry.NewAddition, "", "build"), "builder/x.js", false},
		{"dir", pat(registry.Dir, "src", "source", "core"), "source/core/src/a.js", true},
		{"dir bare prefix", pat(registry.Dir, "src"), "src/a.js", true},
		{"dir sibling", pat(registry.Dir, "src"), "srcs/a.js", false},
		{"file exact", pat(registry.File, "gulpfile.js", "build"), "build/gulpfile.js", true},
		{"file exact nested", pat(registry.File, "gulpfile.js", "build"), "build/sub/gulpfile.js", false},
		{"file without trail matches basename", pat(registry.File, "package.json"), "libs/package.json", true},
		{"file wildcard on basename", pat(registry.File, "*.conf.js"), "tools/webpack.conf.js", true},
		{"file wildcard under trail", pat(registry.File, "*.conf.js", "build"), "tools/webpack.conf.js", false},
		{"extension", pat(registry.Extension, ".spec.js"), "test/spec/auction.spec.js", true},
		{"extension mismatch", pat(registry.Extension, ".spec.js"), "test/spec/auction.js", false},
		{"ends with basename", pat(registry.EndsWith, "BidAdapter.js"), "modules/rubiconBidAdapter.js", true},
		{"ends with ignores directories", pat(registry.EndsWith, "Adapter"), "modules/Adapter/x.js", false},
		{"includes folds case", pat(registry.Includes, "ANALYTICS"), "modules/googleAnalyticsAdapter.js", true},
		{"includes full path", pat(registry.Includes, "modules/google"), "modules/googleAnalyticsAdapter.js", true},
		{"includes miss", pat(registry.Includes, "video"), "modules/googleAnalyticsAdapter.js", false},
		{"literal path glob", pat(registry.LiteralPath, "*.md", "docs"), "docs/guide/intro.md", true},
		{"literal path miss", pat(registry.LiteralPath, "*.md", "docs"), "docs/guide/intro.txt", false},
		{"empty value never matches", pat(registry.EndsWith, ""), "a.js", false},
		{"malformed file glob is a miss", pat(registry.File, "*[z-a].js"), "a.js", false},
		{"malformed path glob is a miss", pat(registry.LiteralPath, "[9-0]*", "docs"), "docs/1.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(tt.path, []registry.Pattern{tt.p}, changeset.StatusModified)
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestNewAdditionFlag(t *testing.T) {
	e := NewEvaluator(nil)
	ps := []registry.Pattern{pat(registry.NewAddition, "", "build")}

	added := e.Evaluate("build/webpack/config.js", ps, changeset.StatusAdded)
	require.Len(t, added, 1)
	assert.True(t, added[0].IsNewAddition)
	assert.Equal(t, "build", added[0].Tag.String())
	assert.Equal(t, tags.ImpactHigh, DetermineImpact(added, changeset.StatusAdded))

	modified := e.Evaluate("build/webpack/config.js", ps, changeset.StatusModified)
	require.Len(t, modified, 1)
	assert.False(t, modified[0].IsNewAddition)
}

func TestDetermineImpact(t *testing.T) {
	match := func(impact tags.ImpactLevel, trail ...string) Match {
		p := pat(registry.Dir, "x", trail...)
		p.Impact = impact
		return Match{Pattern: p, Tag: p.HierarchicalTag()}
	}
	tests := []struct {
		name    string
		matches []Match
		status  changeset.Status
		want    tags.ImpactLevel
	}{
		{"no matches", nil, changeset.StatusModified, tags.ImpactMedium},
		{"docs", []Match{match(tags.ImpactUnset, "docs")}, changeset.StatusModified, tags.ImpactMinimal},
		{"testing", []Match{match(tags.ImpactUnset, "testing")}, changeset.StatusModified, tags.ImpactLow},
		{"source", []Match{match(tags.ImpactUnset, "source", "libraries")}, changeset.StatusModified, tags.ImpactMedium},
		{"source core", []Match{match(tags.ImpactUnset, "source", "core")}, changeset.StatusModified, tags.ImpactHigh},
		{"build", []Match{match(tags.ImpactUnset, "build")}, changeset.StatusModified, tags.ImpactHigh},
		{"label wins when higher", []Match{match(tags.ImpactCritical, "docs")}, changeset.StatusModified, tags.ImpactCritical},
		{"label lower than default", []Match{match(tags.ImpactLow, "build")}, changeset.StatusModified, tags.ImpactHigh},
		{"unknown area uses label", []Match{match(tags.ImpactLow, "misc")}, changeset.StatusModified, tags.ImpactLow},
		{"unknown area without label", []Match{match(tags.ImpactUnset, "misc")}, changeset.StatusModified, tags.ImpactMedium},
		{
			"mixed areas take the maximum",
			[]Match{match(tags.ImpactUnset, "docs"), match(tags.ImpactUnset, "testing"), match(tags.ImpactUnset, "source")},
			changeset.StatusModified,
			tags.ImpactMedium,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineImpact(tt.matches, tt.status))
		})
	}
}

func TestDetermineImpactOrderIndependent(t *testing.T) {
	var matches []Match
	for _, area := range []string{"docs", "testing", "source", "misc"} {
		for _, l := range append([]tags.ImpactLevel{tags.ImpactUnset}, tags.Levels...) {
			p := pat(registry.Dir, "x", area)
			p.Impact = l
			matches = append(matches, Match{Pattern: p})
		}
	}
	want := DetermineImpact(matches, changeset.StatusModified)
	r := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		r.Shuffle(len(matches), func(i, j int) { matches[i], matches[j] = matches[j], matches[i] })
		assert.Equal(t, want, DetermineImpact(matches, changeset.StatusModified))
	}
}

func TestExtractModuleInfo(t *testing.T) {
	ref := ExtractModuleInfo("modules/rubiconBidAdapter.js",
		pat(registry.EndsWith, "BidAdapter.js", "source", "modules", "bidAdapters"))
	assert.Equal(t, ModuleRef{Type: "bidAdapters", Name: "rubicon"}, ref)

	ref = ExtractModuleInfo("modules/rubiconBidAdapter.js",
		pat(registry.EndsWith, "BidAdapter", "modules", "bid"))
	assert.Equal(t, ModuleRef{Type: "bid", Name: "rubicon"}, ref)

	ref = ExtractModuleInfo("modules/userId/index.js", pat(registry.Dir, "userId", "modules"))
	assert.Equal(t, ModuleRef{Name: "index"}, ref)

	assert.Equal(t, ModuleRef{}, ExtractModuleInfo("src/a.js", pat(registry.Dir, "src", "source")))
}
