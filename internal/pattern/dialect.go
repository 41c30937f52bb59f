package pattern

import (
	"fmt"
	"strings"
)

// Dialect selects how a Pattern's raw text is interpreted.
type Dialect string

const (
	Suffix    Dialect = "suffix"
	Prefix    Dialect = "prefix"
	Glob      Dialect = "glob"
	Regex     Dialect = "regex"
	Directory Dialect = "directory"
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{Suffix, Prefix, Glob, Regex, Directory}

// ParseDialect maps a document value onto a Dialect. An empty value means Glob.
// Unknown values are rejected instead of falling back to glob.
func ParseDialect(s string) (Dialect, error) {
	v := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return Glob, nil
	}
	for _, d := range Dialects {
		if v == d {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown pattern type %q", s)
}

// Pattern is a single module pattern of a category.
type Pattern struct {
	Pattern         string   `json:"pattern" yaml:"pattern" mapstructure:"pattern" validate:"required"`
	Type            Dialect  `json:"type" yaml:"type" mapstructure:"type" validate:"omitempty,oneof=suffix prefix glob regex directory"`
	NameExtraction  string   `json:"name_extraction,omitempty" yaml:"name_extraction,omitempty" mapstructure:"name_extraction"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty" mapstructure:"exclude_patterns"`
}

// Dialect returns the effective dialect, treating an empty type as Glob.
func (p Pattern) Dialect() Dialect {
	if p.Type == "" {
		return Glob
	}
	return p.Type
}

// Check verifies the dialect contract of p without matching anything.
func (p Pattern) Check() error {
	_, err := compileCheck(p)
	return err
}
