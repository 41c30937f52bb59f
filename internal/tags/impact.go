// Package tags holds the value types shared by the registry and the tagging
// processor: impact levels and hierarchical tags.
package tags

import (
	"fmt"
	"strings"
)

// ImpactLevel is the ordinal severity of a change.
type ImpactLevel int

const (
	ImpactUnset ImpactLevel = iota
	ImpactMinimal
	ImpactLow
	ImpactMedium
	ImpactHigh
	ImpactCritical
)

// Levels lists every set level in ascending order.
var Levels = []ImpactLevel{ImpactMinimal, ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical}

var impactNames = map[ImpactLevel]string{
	ImpactMinimal:  "minimal",
	ImpactLow:      "low",
	ImpactMedium:   "medium",
	ImpactHigh:     "high",
	ImpactCritical: "critical",
}

func (l ImpactLevel) String() string {
	if s, ok := impactNames[l]; ok {
		return s
	}
	return ""
}

// ParseImpact maps a label such as "high" onto its level. Labels are case-insensitive.
func ParseImpact(s string) (ImpactLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range impactNames {
		if name == s {
			return l, nil
		}
	}
	return ImpactUnset, fmt.Errorf("unknown impact level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l ImpactLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. An empty label leaves the level unset.
func (l *ImpactLevel) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*l = ImpactUnset
		return nil
	}
	v, err := ParseImpact(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Max returns the highest level among ls, or ImpactUnset for none.
func Max(ls ...ImpactLevel) ImpactLevel {
	out := ImpactUnset
	for _, l := range ls {
		if l > out {
			out = l
		}
	}
	return out
}
