package pattern

import "strings"

const (
	removeSuffixRule = "remove_suffix:"
	removePrefixRule = "remove_prefix:"
	filenameRule     = "filename"
	directoryRule    = "directory"
)

// ExtractName derives a module name from path using p's extraction rule.
// It returns "" when p has no rule. A rule that does not apply to path
// yields the file stem unchanged.
func ExtractName(path string, p Pattern) string {
	rule := p.NameExtraction
	if rule == "" {
		return ""
	}
	file := baseName(path)
	stem := Stem(file)

	switch {
	case strings.HasPrefix(rule, removeSuffixRule):
		lit := strings.TrimPrefix(rule, removeSuffixRule)
		if lit == "" {
			return stem
		}
		if ext := file[len(stem):]; ext != "" {
			if name, ok := strings.CutSuffix(file, lit+ext); ok {
				return name
			}
		}
		if name, ok := strings.CutSuffix(stem, lit); ok {
			return name
		}
		if name, ok := strings.CutSuffix(file, lit); ok {
			return name
		}
	case strings.HasPrefix(rule, removePrefixRule):
		lit := strings.TrimPrefix(rule, removePrefixRule)
		if name, ok := strings.CutPrefix(stem, lit); ok {
			return name
		}
	case rule == filenameRule:
		return stem
	case rule == directoryRule:
		parts := strings.Split(path, "/")
		if len(parts) > 1 {
			return parts[len(parts)-2]
		}
	}
	return stem
}

// Stem returns the final path segment without its last extension.
func Stem(path string) string {
	file := baseName(path)
	if i := strings.LastIndexByte(file, '.'); i > 0 {
		return file[:i]
	}
	return file
}
