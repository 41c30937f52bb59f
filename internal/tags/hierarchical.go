package tags

import "strings"

// HierarchicalTag is a label of up to three levels.
type HierarchicalTag struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
}

// FromPath builds a tag from at most the first three trail segments.
func FromPath(trail []string) HierarchicalTag {
	var t HierarchicalTag
	if len(trail) > 0 {
		t.Primary = trail[0]
	}
	if len(trail) > 1 {
		t.Secondary = trail[1]
	}
	if len(trail) > 2 {
		t.Tertiary = trail[2]
	}
	return t
}

// Parse reverses String.
func Parse(s string) HierarchicalTag {
	if s == "" {
		return HierarchicalTag{}
	}
	return FromPath(strings.SplitN(s, ".", 3))
}

// Levels returns the set levels in order.
func (t HierarchicalTag) Levels() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{t.Primary, t.Secondary, t.Tertiary} {
		if s == "" {
			break
		}
		out = append(out, s)
	}
	return out
}

// String joins the set levels with dots, e.g. "source.core".
func (t HierarchicalTag) String() string { return strings.Join(t.Levels(), ".") }

// IsZero reports whether no level is set.
func (t HierarchicalTag) IsZero() bool { return t.Primary == "" }
