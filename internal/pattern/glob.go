package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

// translateGlob converts a shell glob into an anchored regular expression.
// '*' and '?' cross '/' boundaries, so "modules/*.js" also matches
// "modules/sub/x.js". An unterminated '[' is taken literally. A class with
// a reversed range such as "[z-a]" is an InvalidPattern error.
func translateGlob(pat string) (string, error) {
	rs := []rune(pat)
	n := len(rs)
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i := 0; i < n; {
		c := rs[i]
		i++
		switch c {
		case '*':
			// collapse runs of '*'
			for i < n && rs[i] == '*' {
				i++
			}
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i
			if j < n && rs[j] == '!' {
				j++
			}
			if j < n && rs[j] == ']' {
				j++
			}
			for j < n && rs[j] != ']' {
				j++
			}
			if j >= n {
				b.WriteString(`\[`)
				continue
			}
			class, err := translateClass(rs[i:j])
			if err != nil {
				return "", errors.InvalidPattern(pat, err.Error())
			}
			b.WriteString(class)
			i = j + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)
	return b.String(), nil
}

func translateClass(body []rune) (string, error) {
	var b strings.Builder
	b.WriteByte('[')
	if len(body) > 0 && body[0] == '!' {
		b.WriteByte('^')
		body = body[1:]
	}
	for k := 0; k < len(body); k++ {
		r := body[k]
		if k+2 < len(body) && body[k+1] == '-' {
			hi := body[k+2]
			if hi < r {
				return "", fmt.Errorf("reversed character range %c-%c", r, hi)
			}
			writeClassRune(&b, r)
			b.WriteByte('-')
			writeClassRune(&b, hi)
			k += 2
			continue
		}
		writeClassRune(&b, r)
	}
	b.WriteByte(']')
	return b.String(), nil
}

func writeClassRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', '[', ']', '^', '-':
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

// compileGlob translates and compiles pat.
func compileGlob(pat string) (*regexp.Regexp, error) {
	expr, err := translateGlob(pat)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.InvalidPatternCause(pat, err)
	}
	return re, nil
}

// CheckGlob reports whether pat is a usable glob.
func CheckGlob(pat string) error {
	_, err := compileGlob(pat)
	return err
}
