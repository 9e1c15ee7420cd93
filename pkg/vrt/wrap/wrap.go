// Package wrap joins concatenated partial documents into one stream with a
// single leading XML declaration and a single wrapping element.
package wrap

import (
	"errors"
	"io"
	"regexp"

	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// State is the position of a Reader in the wrapped stream.
type State int

const (
	AtStart State = iota
	AtPrefix
	InFragment
	EOF
)

var (
	declPattern     = regexp.MustCompile(`(?s)<\?xml.*?\?>\n?`)
	leadingDeclLine = regexp.MustCompile(`(?s)^(<\?xml.*?\?>\n?)(.*)$`)
)

// Reader yields the lines of src wrapped in one element. The first XML
// declaration is kept at the top; declarations of later fragments are
// removed wherever they appear.
type Reader struct {
	src   stream.Lines
	open  string
	close string
	state State

	ahead    string
	hasAhead bool
	pending  string
}

// New wraps src in element elem. With an empty elem no wrapper lines are
// emitted and only the repeated declarations are removed.
func New(src stream.Lines, elem string) *Reader {
	r := &Reader{src: src}
	if elem != "" {
		r.open = "<" + elem + ">\n"
		r.close = "</" + elem + ">\n"
	}
	return r
}

// State returns the current state.
func (r *Reader) State() State {
	return r.state
}

// Next returns the next line of the wrapped stream, or io.EOF.
func (r *Reader) Next() (string, error) {
	for {
		switch r.state {
		case AtStart:
			line, err := r.src.Next()
			if err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			if m := leadingDeclLine.FindStringSubmatch(line); m != nil {
				r.state = AtPrefix
				r.ahead, r.hasAhead = m[2], m[2] != ""
				return m[1], nil
			}
			r.state = InFragment
			r.ahead, r.hasAhead = line, line != ""
			if r.open != "" {
				return r.open, nil
			}
		case AtPrefix:
			r.state = InFragment
			if r.open != "" {
				return r.open, nil
			}
		case InFragment:
			var text string
			if r.hasAhead {
				text, r.hasAhead = r.ahead, false
			} else {
				line, err := r.src.Next()
				if errors.Is(err, io.EOF) {
					r.state = EOF
					if r.close != "" {
						return r.close, nil
					}
					return "", io.EOF
				}
				if err != nil {
					return "", err
				}
				text = line
			}
			if text = declPattern.ReplaceAllString(text, ""); text != "" {
				return text, nil
			}
		default:
			return "", io.EOF
		}
	}
}

// Read implements io.Reader over the wrapped stream.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for r.pending == "" {
		line, err := r.Next()
		if err != nil {
			return 0, err
		}
		r.pending = line
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
