package repoconfig

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

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

const prebidJS = `{
  "repo_name": "prebid/Prebid.js",
  "repo_type": "prebid-js",
  "description": "Header bidding library",
  "detection_strategy": "hybrid",
  "module_categories": {
    "bid_adapter": {
      "display_name": "Bid Adapters",
      "paths": ["modules/"],
      "patterns": [
        {"pattern": "*BidAdapter.js", "type": "suffix", "name_extraction": "remove_suffix:BidAdapter"}
      ]
    },
    "analytics_adapter": {
      "display_name": "Analytics Adapters",
      "paths": ["modules/"],
      "patterns": [
        {"pattern": "*AnalyticsAdapter.js", "type": "suffix", "name_extraction": "remove_suffix:AnalyticsAdapter"}
      ]
    }
  },
  "version_overrides": {
    "v10.0+": {
      "module_categories": {
        "bid_adapter": {
          "display_name": "Bid Adapters (v10)",
          "paths": ["modules/", "metadata/modules/"],
          "patterns": [{"pattern": "*BidAdapter.json", "type": "suffix", "name_extraction": "remove_suffix:BidAdapter"}]
        }
      }
    },
    "v9.0": {"module_categories": {}}
  },
  "paths": {
    "core": ["src/", "libraries/"],
    "test": ["test/"],
    "docs": ["*.md"],
    "exclude": ["node_modules/", "dist/"]
  },
  "relationships": [
    {"type": "uses_modules_from", "target": "prebid/prebid-server", "description": "server side bidding"}
  ]
}`
