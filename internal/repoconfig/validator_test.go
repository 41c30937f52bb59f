package repoconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFileValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prebid.json", prebidJS)
	r := NewValidator(quietLogger()).ValidateFile(path)
	require.True(t, r.Valid(), "%v", r.Issues)
}

func TestValidateFileReportsIssues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", `{
  "repo_name": "acme/app",
  "fetch_strategy": "everything",
  "module_categories": {
    "empty": {"patterns": []},
    "broken": {"patterns": [
      {"pattern": "Adapter.js", "type": "suffix"},
      {"pattern": "test_", "type": "prefix"},
      {"pattern": "(x", "type": "regex"},
      {"pattern": "*.go", "type": "glob"},
      {"pattern": "*.go", "type": "glob"},
      {"pattern": "x", "type": "fuzzy"}
    ]}
  }
}`)
	r := NewValidator(quietLogger()).ValidateFile(path)
	require.False(t, r.Valid())
	joined := strings.Join(r.Issues, "\n")
	for _, want := range []string{
		"repo_type: required",
		"fetch_strategy",
		`category "empty" has no patterns defined`,
		`suffix pattern "Adapter.js" violates its contract`,
		`prefix pattern "test_" violates its contract`,
		`regex pattern "(x" violates its contract`,
		`duplicate pattern in "broken": *.go`,
		`unknown pattern type "fuzzy"`,
	} {
		require.Contains(t, joined, want)
	}
	require.Equal(t, 1, strings.Count(joined, "repo_type: required"))
}

func TestValidateFileReportsMalformedGlobs(t *testing.T) {
	path := writeFile(t, t.TempDir(), "globs.yaml", `repo_name: acme/app
repo_type: app
module_categories:
  scripts:
    paths: [src/]
    patterns:
      - pattern: "*[z-a]*"
        type: glob
      - pattern: "*.js"
        type: suffix
        exclude_patterns: ["*_spec.js", "*[9-0]*"]
paths:
  core: ["src/[z-a]*", src/]
`)
	r := NewValidator(quietLogger()).ValidateFile(path)
	require.False(t, r.Valid())
	joined := strings.Join(r.Issues, "\n")
	require.Contains(t, joined, `glob pattern "*[z-a]*" violates its contract`)
	require.Contains(t, joined, `invalid exclude pattern "*[9-0]*"`)
	require.Contains(t, joined, `paths.core: invalid glob "src/[z-a]*"`)
	require.NotContains(t, joined, "*_spec.js")
}

func TestValidateInheritance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"extends": "b.json"}`)
	writeFile(t, dir, "b.json", `{"extends": "a.json"}`)
	writeFile(t, dir, "c.json", `{"extends": "missing.json"}`)
	v := NewValidator(quietLogger())

	issues := v.ValidateInheritance(dir + "/a.json")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0], "circular inheritance")

	issues = v.ValidateInheritance(dir + "/c.json")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0], "base config not found")
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.json", prebidJS)
	writeFile(t, dir, "repositories/shared/prebid-base.json", `{"module_categories": {"x": {"display_name": "X", "patterns": [{"pattern": "*.js", "type": "suffix"}]}}}`)
	writeFile(t, dir, "repositories/broken.yaml", "repo_name: acme/x\nmodule_categories: {}\n")
	writeFile(t, dir, "schema/repository.schema.json", `{"type": "object"}`)
	writeFile(t, dir, "repositories.json", `{"repositories": []}`)

	reports, err := NewValidator(quietLogger()).ValidateDirectory(dir)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	valid := map[string]bool{}
	for _, r := range reports {
		valid[r.Path[len(dir)+1:]] = r.Valid()
	}
	require.True(t, valid["repositories/prebid/prebid-js.json"])
	require.True(t, valid["repositories/shared/prebid-base.json"], "partial base documents skip required fields")
	require.False(t, valid["repositories/broken.yaml"])
}

func TestValidateLegacyMap(t *testing.T) {
	path := writeFile(t, t.TempDir(), "legacy.json", `{
  "$schema": "x",
  "acme/app": {"repo_type": "app", "module_categories": {"c": {"patterns": [{"pattern": "x", "pattern_type": "suffix"}]}}}
}`)
	r := NewValidator(quietLogger()).ValidateFile(path)
	require.Len(t, r.Issues, 1)
	require.True(t, strings.HasPrefix(r.Issues[0], "acme/app: "))
}
