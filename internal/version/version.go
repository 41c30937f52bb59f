// Package version parses version labels and evaluates comparator ranges.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

// Version is a parsed semantic version in canonical "vMAJOR.MINOR.PATCH" form.
// Release components past the third are kept in extra.
type Version struct {
	raw       string
	canonical string
	extra     []int
}

// Parse parses s, tolerating a leading "v" and short forms such as "10" or
// "10.5". A pre-release written without a hyphen ("10.0rc1") is accepted.
// Leading zeros are dropped ("10.05" is "10.5") and a release may carry more
// than three components ("1.2.3.4"); trailing zero components are ignored.
func Parse(s string) (Version, error) {
	cleaned := strings.TrimLeft(strings.TrimSpace(s), "vV")
	if cleaned == "" {
		return Version{}, errors.VersionParse(s)
	}
	core, suffix := splitSuffix(padCore(hyphenatePrerelease(cleaned)))
	parts := strings.Split(core, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, errors.VersionParse(s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, errors.VersionParse(s).WithContext("reason", err.Error())
		}
		nums[i] = n
	}
	extra := nums[3:]
	for len(extra) > 0 && extra[len(extra)-1] == 0 {
		extra = extra[:len(extra)-1]
	}
	v := fmt.Sprintf("v%d.%d.%d%s", nums[0], nums[1], nums[2], suffix)
	if !semver.IsValid(v) {
		return Version{}, errors.VersionParse(s)
	}
	return Version{raw: s, canonical: semver.Canonical(v), extra: extra}, nil
}

func splitSuffix(s string) (core, suffix string) {
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// hyphenatePrerelease rewrites "10.0rc1" as "10.0-rc1".
func hyphenatePrerelease(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' || c == '+' {
			return s
		}
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			if i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
				return s[:i] + "-" + s[i:]
			}
			return s
		}
	}
	return s
}

// padCore fills missing minor and patch components so short forms may
// carry a pre-release ("10.0-rc1" becomes "10.0.0-rc1").
func padCore(s string) string {
	core, suffix := splitSuffix(s)
	if n := strings.Count(core, ".") + 1; n < 3 {
		core += strings.Repeat(".0", 3-n)
	}
	return core + suffix
}

// String returns the canonical form, e.g. "v10.5.0" or "v1.2.3.4-rc1".
func (v Version) String() string {
	if len(v.extra) == 0 {
		return v.canonical
	}
	pre := semver.Prerelease(v.canonical)
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(v.canonical, pre))
	for _, n := range v.extra {
		b.WriteString("." + strconv.Itoa(n))
	}
	b.WriteString(pre)
	return b.String()
}

// Raw returns the input the version was parsed from.
func (v Version) Raw() string { return v.raw }

// Compare returns -1, 0 or +1. Release components are compared first,
// missing ones counting as zero. A pre-release orders below its release.
func (v Version) Compare(o Version) int {
	vc := strings.TrimSuffix(v.canonical, semver.Prerelease(v.canonical))
	oc := strings.TrimSuffix(o.canonical, semver.Prerelease(o.canonical))
	if c := semver.Compare(vc, oc); c != 0 {
		return c
	}
	for i := 0; i < max(len(v.extra), len(o.extra)); i++ {
		a, b := component(v.extra, i), component(o.extra, i)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return semver.Compare(v.canonical, o.canonical)
}

func component(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

// Prerelease reports whether v carries a pre-release suffix.
func (v Version) Prerelease() bool { return semver.Prerelease(v.canonical) != "" }

// Major returns the major component, e.g. "v10".
func (v Version) Major() string { return semver.Major(v.canonical) }
