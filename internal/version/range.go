package version

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

type operator string

const (
	opGE operator = ">="
	opGT operator = ">"
	opLE operator = "<="
	opLT operator = "<"
	opEQ operator = "=="
)

// two-character operators must be tried first
var operators = []operator{opGE, opLE, opEQ, opGT, opLT}

type comparator struct {
	op  operator
	ver Version
}

func (c comparator) holds(v Version) bool {
	cmp := v.Compare(c.ver)
	switch c.op {
	case opGE:
		return cmp >= 0
	case opGT:
		return cmp > 0
	case opLE:
		return cmp <= 0
	case opLT:
		return cmp < 0
	default:
		return cmp == 0
	}
}

// Range is an AND-ed list of comparators such as ">=10.0,<11.0".
type Range struct {
	expr        string
	comparators []comparator
}

// ParseRange parses a comma separated comparator list. Every comparator
// must hold for a version to satisfy the range.
func ParseRange(expr string) (Range, error) {
	r := Range{expr: expr}
	parts := strings.Split(expr, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Range{}, errors.VersionParse(expr).WithContext("reason", "empty comparator")
		}
		c := comparator{op: opEQ}
		rest := part
		for _, op := range operators {
			if after, ok := strings.CutPrefix(part, string(op)); ok {
				c.op, rest = op, after
				break
			}
		}
		v, err := Parse(rest)
		if err != nil {
			return Range{}, err
		}
		c.ver = v
		r.comparators = append(r.comparators, c)
	}
	return r, nil
}

// Contains reports whether v satisfies every comparator of r.
func (r Range) Contains(v Version) bool {
	for _, c := range r.comparators {
		if !c.holds(v) {
			return false
		}
	}
	return true
}

func (r Range) String() string { return r.expr }

// Satisfies parses version and rng and reports whether the version lies in the range.
func Satisfies(version, rng string) (bool, error) {
	v, err := Parse(version)
	if err != nil {
		return false, err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return false, err
	}
	return r.Contains(v), nil
}

// MatchesRange is Satisfies with parse failures reported as no match.
func MatchesRange(version, rng string) bool {
	ok, err := Satisfies(version, rng)
	return err == nil && ok
}

// ExtractVersionAndRange splits a version key. A trailing "+" means "this
// version and later": "v10.0+" yields ("v10.0", ">=10.0"). Keys without the
// suffix yield an empty range.
func ExtractVersionAndRange(key string) (label, rng string) {
	base, ok := strings.CutSuffix(key, "+")
	if !ok {
		return key, ""
	}
	return base, fmt.Sprintf(">=%s", strings.TrimLeft(base, "v"))
}
