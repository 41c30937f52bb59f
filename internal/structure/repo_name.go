package structure

import (
	"net/url"
	"strings"
)

// NormalizeRepoName reduces the clone URL forms of a repository to its
// "owner/repo" identity:
//
//	https://github.com/prebid/Prebid.js      -> prebid/Prebid.js
//	git@github.com:prebid/Prebid.js.git      -> prebid/Prebid.js
//	ssh://git@github.com/prebid/Prebid.js/   -> prebid/Prebid.js
//
// Values that are not URLs are returned trimmed.
func NormalizeRepoName(repo string) string {
	s := strings.TrimSpace(repo)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	switch {
	case strings.Contains(s, "://"):
		if u, err := url.Parse(s); err == nil {
			s = strings.Trim(u.Path, "/")
		}
	case strings.HasPrefix(s, "git@") || isSCPLike(s):
		if _, after, ok := strings.Cut(s, ":"); ok {
			s = after
		}
	}
	s = strings.Trim(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// isSCPLike matches "user@host:path" without a scheme.
func isSCPLike(s string) bool {
	at := strings.Index(s, "@")
	colon := strings.Index(s, ":")
	slash := strings.Index(s, "/")
	return at > 0 && colon > at && (slash < 0 || colon < slash)
}
