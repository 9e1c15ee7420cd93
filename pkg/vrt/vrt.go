// Package vrt holds the line model shared by all VRT tools.
//
// A VRT stream mixes pseudo-XML structural markers, one per line, with
// tab-separated token lines:
//
//	<text title="x">
//	<sentence id="1">
//	Hello	hello	INTJ
//	</sentence>
//	</text>
//
// Markers are pattern-matched, never validated as XML.
package vrt

import (
	"regexp"
	"strings"
)

// Kind categorizes a single input line.
type Kind int

const (
	KindToken Kind = iota
	KindOpen
	KindClose
	KindBlank
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindBlank:
		return "blank"
	default:
		return "token"
	}
}

var (
	markerPattern = regexp.MustCompile(`^<([^\s>]*)(\s.*)?>$`)
	attrPattern   = regexp.MustCompile(` (.*?)="(.*?)"`)
	namePattern   = regexp.MustCompile(`^</?([^\s/>]+)`)
)

// Classify returns the kind of a raw line. The line terminator, if any,
// is ignored.
func Classify(line string) Kind {
	s := TrimEOL(line)
	if strings.TrimSpace(s) == "" {
		return KindBlank
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		if strings.HasPrefix(s, "</") {
			return KindClose
		}
		return KindOpen
	}
	return KindToken
}

// IsDeclaration reports whether line starts with an XML declaration.
func IsDeclaration(line string) bool {
	return strings.HasPrefix(line, "<?xml")
}

// TrimEOL removes a trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// EOL returns the terminator TrimEOL would remove.
func EOL(line string) string {
	return line[len(TrimEOL(line)):]
}

// Attr is one attribute of a structural marker.
type Attr struct {
	Name  string
	Value string
}

// Attrs keeps attributes in declared order.
type Attrs []Attr

// Get returns the first value declared for name.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether name is declared.
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Names returns the distinct attribute names in declared order.
func (a Attrs) Names() []string {
	seen := make(map[string]struct{}, len(a))
	names := make([]string, 0, len(a))
	for _, attr := range a {
		if _, ok := seen[attr.Name]; ok {
			continue
		}
		seen[attr.Name] = struct{}{}
		names = append(names, attr.Name)
	}
	return names
}

// Marker is a parsed structural open line.
type Marker struct {
	Name  string
	Attrs Attrs
}

// ParseMarker parses an open marker line such as `<text id="1" year="1999">`.
// It reports false for anything that is not an open marker.
func ParseMarker(line string) (Marker, bool) {
	if Classify(line) != KindOpen {
		return Marker{}, false
	}
	m := markerPattern.FindStringSubmatch(TrimEOL(line))
	if m == nil {
		return Marker{}, false
	}
	marker := Marker{Name: m[1]}
	for _, am := range attrPattern.FindAllStringSubmatch(m[2], -1) {
		marker.Attrs = append(marker.Attrs, Attr{Name: am[1], Value: am[2]})
	}
	return marker, true
}

// MarkerName returns the element name of an open or close marker line.
func MarkerName(line string) string {
	m := namePattern.FindStringSubmatch(TrimEOL(line))
	if m == nil {
		return ""
	}
	return m[1]
}

// IsOpenOf reports whether line opens an element called name.
func IsOpenOf(line, name string) bool {
	return Classify(line) == KindOpen && MarkerName(line) == name
}

// IsCloseOf reports whether line closes an element called name.
func IsCloseOf(line, name string) bool {
	return Classify(line) == KindClose && MarkerName(line) == name
}

// Fields splits a token line into its tab-separated fields.
func Fields(line string) []string {
	return strings.Split(TrimEOL(line), "\t")
}

// Field returns fields[i] if it exists.
func Field(fields []string, i int) (string, bool) {
	if i < 0 || i >= len(fields) {
		return "", false
	}
	return fields[i], true
}

// FieldOr returns fields[i], or def when the row is too short.
func FieldOr(fields []string, i int, def string) string {
	if v, ok := Field(fields, i); ok {
		return v
	}
	return def
}
