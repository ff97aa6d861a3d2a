package table

import (
	"regexp"
	"strings"
)

// patternRE recognises the delimited "/pattern/flags" search syntax.
var patternRE = regexp.MustCompile(`^/(.+)/([A-Za-z]*)$`)

// GlobalFilter is a compiled global search. The zero value matches
// everything.
type GlobalFilter struct {
	text  string
	lower string
	re    *regexp.Regexp
}

// ParseGlobalFilter compiles the search text. When allowPattern is set and
// the text has the form /pattern/flags with a valid pattern and flags, the
// filter matches with the regular expression; otherwise it is a
// case-insensitive substring match of the full text.
func ParseGlobalFilter(text string, allowPattern bool) GlobalFilter {
	f := GlobalFilter{text: text, lower: strings.ToLower(text)}
	if allowPattern {
		f.re = compilePattern(text)
	}
	return f
}

// compilePattern returns nil when the text is not a well-formed pattern.
func compilePattern(text string) *regexp.Regexp {
	m := patternRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	prefix, ok := translateFlags(m[2])
	if !ok {
		return nil
	}
	re, err := regexp.Compile(prefix + m[1])
	if err != nil {
		return nil
	}
	return re
}

// translateFlags maps JavaScript regex flags onto Go inline flags. The
// g, y, u and d flags have no effect on a single match test.
func translateFlags(flags string) (string, bool) {
	var inline strings.Builder
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return "", false
		}
		seen[f] = true
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g', 'y', 'u', 'd':
		default:
			return "", false
		}
	}
	if inline.Len() == 0 {
		return "", true
	}
	return "(?" + inline.String() + ")", true
}

// Text returns the raw search text.
func (f GlobalFilter) Text() string {
	return f.text
}

// Empty reports whether the filter matches everything.
func (f GlobalFilter) Empty() bool {
	return f.text == ""
}

// IsPattern reports whether the text compiled as a regular expression.
func (f GlobalFilter) IsPattern() bool {
	return f.re != nil
}

// Match tests a stringified cell value.
func (f GlobalFilter) Match(s string) bool {
	if f.Empty() {
		return true
	}
	if f.re != nil {
		return f.re.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), f.lower)
}

// MatchValue tests a cell value. Only strings and numbers can match.
func (f GlobalFilter) MatchValue(v Value) bool {
	if f.Empty() {
		return true
	}
	if !v.Searchable() {
		return false
	}
	return f.Match(v.String())
}
