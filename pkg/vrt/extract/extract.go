// Package extract pulls a value out of structural marker attributes with a
// user-supplied rule table, and scopes that value to the structure it came
// from.
package extract

import (
	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/nesting"
)

// Extractor evaluates a rule table against open marker lines.
type Extractor struct {
	groups   map[string][]Rule
	excludes map[string][]string
}

// NewExtractor groups rules by element name, keeping declared order inside
// each group.
func NewExtractor(rules []Rule, excludes []Exclude) *Extractor {
	e := &Extractor{
		groups:   make(map[string][]Rule),
		excludes: make(map[string][]string),
	}
	for _, r := range rules {
		e.groups[r.Elem] = append(e.groups[r.Elem], r)
	}
	for _, x := range excludes {
		e.excludes[x.Elem] = append(e.excludes[x.Elem], x.Attr)
	}
	return e
}

// Empty reports whether the extractor has no rules at all.
func (e *Extractor) Empty() bool {
	return len(e.groups) == 0
}

func (e *Extractor) excluded(elem, attr string) bool {
	for _, a := range e.excludes[elem] {
		if a == attr {
			return true
		}
	}
	return false
}

// Extract returns the value produced by the first matching rule for an open
// marker line, or "" when nothing matches.
func (e *Extractor) Extract(line string) string {
	if e.excluded(Wildcard, Wildcard) {
		return ""
	}
	m, ok := vrt.ParseMarker(line)
	if !ok || len(m.Attrs) == 0 {
		return ""
	}
	if e.excluded(m.Name, Wildcard) {
		return ""
	}
	group, ok := e.groups[m.Name]
	if !ok {
		group = e.groups[Wildcard]
	}

	for _, rule := range group {
		var check []string
		switch {
		case m.Attrs.Has(rule.Attr):
			check = []string{rule.Attr}
		case rule.Attr == Wildcard:
			check = m.Attrs.Names()
		default:
			continue
		}
		for _, attr := range check {
			if e.excluded(m.Name, attr) || e.excluded(Wildcard, attr) {
				continue
			}
			value, _ := m.Attrs.Get(attr)
			loc := rule.Pattern.FindStringSubmatchIndex(value)
			if loc == nil {
				continue
			}
			return string(rule.Pattern.ExpandString(nil, rule.Template, value, loc))
		}
	}
	return ""
}

// Scope tracks the extraction context while a stream is read. A value
// extracted from an open marker stays in force until that structure closes;
// no new extraction is attempted while a context is active.
type Scope struct {
	ex      *Extractor
	tracker *nesting.Tracker
	value   string
	depth   int
}

// NewScope returns a scope over a lenient nesting tracker.
func NewScope(ex *Extractor) *Scope {
	return &Scope{ex: ex, tracker: nesting.New()}
}

// NewStrictScope returns a scope that fails on unbalanced or mismatched
// close markers.
func NewStrictScope(ex *Extractor) *Scope {
	return &Scope{ex: ex, tracker: nesting.NewStrict()}
}

// Observe feeds one raw line and returns its kind. Errors come only from
// a strict scope; the scope state is unchanged on error.
func (s *Scope) Observe(line string) (vrt.Kind, error) {
	kind, err := s.tracker.Observe(line)
	if err != nil {
		return kind, err
	}
	switch kind {
	case vrt.KindClose:
		if s.value != "" && s.tracker.Depth() < s.depth {
			s.value = ""
			s.depth = 0
		}
	case vrt.KindOpen:
		if s.value == "" && !vrt.IsDeclaration(line) {
			if v := s.ex.Extract(line); v != "" {
				s.value = v
				s.depth = s.tracker.Depth()
			}
		}
	}
	return kind, nil
}

// Finish reports structures left open at end of input by a strict scope.
func (s *Scope) Finish() error {
	return s.tracker.Finish()
}

// Value returns the extraction context currently in force.
func (s *Scope) Value() string {
	return s.value
}

// Depth returns the depth at which the current context was opened, 0 when
// there is none.
func (s *Scope) Depth() int {
	return s.depth
}
