package structure

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const prebidYAML = `repo_name: prebid/Prebid.js
repo_type: prebid-js
detection_strategy: hybrid
module_categories:
  bid_adapter:
    display_name: Bid Adapters
    paths: [modules/]
    patterns:
      - pattern: "*BidAdapter.js"
        type: suffix
        name_extraction: remove_suffix:BidAdapter
  analytics_adapter:
    display_name: Analytics Adapters
    paths: [modules/]
    patterns:
      - pattern: "*AnalyticsAdapter.js"
        type: suffix
        name_extraction: remove_suffix:AnalyticsAdapter
  everything:
    display_name: Any Module
    paths: [modules/]
    patterns:
      - pattern: "*.js"
        type: glob
version_overrides:
  "v10.0+":
    module_categories:
      bid_metadata:
        display_name: Bid Adapter Metadata
        paths: [metadata/modules/]
        patterns:
          - pattern: "*BidAdapter.json"
            type: suffix
            name_extraction: remove_suffix:BidAdapter
paths:
  core: [src/, libraries/]
  test: [test/]
  docs: ["*.md"]
  exclude: [node_modules/, dist/]
relationships:
  - type: uses_modules_from
    target: prebid/prebid-server
`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML)
	m, err := NewManager(repoconfigLoader(dir), WithLogger(quietLogger()))
	require.NoError(t, err)
	return m
}

func chtimes(path string, at time.Time) error {
	return os.Chtimes(path, at, at)
}
