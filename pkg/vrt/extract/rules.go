package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
)

// Wildcard matches any element or attribute name.
const Wildcard = "*"

// Default patterns for four-digit and two-or-four-digit years.
const (
	DefaultYearPattern    = `((?:1[0-9]|20)[0-9][0-9])`
	DefaultYearPattern2   = `((?:1[0-9]|20)?[0-9][0-9])`
	DefaultOutputTemplate = `\1`
)

// Rule extracts a value from one attribute of an element.
type Rule struct {
	Elem     string
	Attr     string
	Pattern  *regexp.Regexp
	Template string // Go expansion template, see ConvertTemplate
}

// Exclude suppresses extraction from an attribute of an element.
type Exclude struct {
	Elem string
	Attr string
}

// ParseRule parses "ELEM[|ELEM...] [ATTR[|ATTR...] [REGEXP [TEMPLATE]]]".
// Missing parts default to the wildcard attribute, defaultPattern and `\1`.
// One rule is returned for every element and attribute combination.
func ParseRule(spec, defaultPattern string) ([]Rule, error) {
	parts := splitFields(spec, 4)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty extract pattern: %w", internalerr.ErrInvalidConfig)
	}
	elems := strings.Split(parts[0], "|")
	attrs := []string{Wildcard}
	if len(parts) > 1 {
		attrs = strings.Split(parts[1], "|")
	}
	pattern := defaultPattern
	if len(parts) > 2 {
		pattern = parts[2]
	}
	templ := DefaultOutputTemplate
	if len(parts) > 3 {
		templ = parts[3]
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("extract pattern %q: %v: %w", pattern, err, internalerr.ErrInvalidConfig)
	}
	goTempl := ConvertTemplate(templ)

	rules := make([]Rule, 0, len(elems)*len(attrs))
	for _, elem := range elems {
		for _, attr := range attrs {
			rules = append(rules, Rule{Elem: elem, Attr: attr, Pattern: re, Template: goTempl})
		}
	}
	return rules, nil
}

// ParseExclude parses "ELEM[|ELEM...] [ATTR[|ATTR...]]". A missing attribute
// list excludes the whole element.
func ParseExclude(spec string) ([]Exclude, error) {
	parts := splitFields(spec, 3)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty exclude: %w", internalerr.ErrInvalidConfig)
	}
	elems := strings.Split(parts[0], "|")
	attrs := []string{Wildcard}
	if len(parts) > 1 {
		attrs = strings.Split(parts[1], "|")
	}
	var out []Exclude
	for _, elem := range elems {
		for _, attr := range attrs {
			out = append(out, Exclude{Elem: elem, Attr: attr})
		}
	}
	return out, nil
}

// ConvertTemplate rewrites a backslash-style output template (`\1`,
// `\g<name>`, `\g<2>`, `\t`, `\n`, `\\`) into a template for
// regexp.Regexp.ExpandString. A literal `$` is escaped.
func ConvertTemplate(templ string) string {
	var b strings.Builder
	for i := 0; i < len(templ); i++ {
		c := templ[i]
		if c == '$' {
			b.WriteString("$$")
			continue
		}
		if c != '\\' || i+1 >= len(templ) {
			b.WriteByte(c)
			continue
		}
		next := templ[i+1]
		switch {
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(templ) && j < i+3 && templ[j] >= '0' && templ[j] <= '9' {
				j++
			}
			b.WriteString("${" + templ[i+1:j] + "}")
			i = j - 1
		case next == 'g' && i+2 < len(templ) && templ[i+2] == '<':
			end := strings.IndexByte(templ[i+3:], '>')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString("${" + templ[i+3:i+3+end] + "}")
			i += 3 + end
		case next == 't':
			b.WriteByte('\t')
			i++
		case next == 'n':
			b.WriteByte('\n')
			i++
		case next == '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitFields splits s on runs of whitespace into at most n parts; the last
// part keeps the unsplit remainder.
func splitFields(s string, n int) []string {
	var parts []string
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" {
		if len(parts) == n-1 {
			parts = append(parts, s)
			break
		}
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			parts = append(parts, s)
			break
		}
		parts = append(parts, s[:end])
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return parts
}
