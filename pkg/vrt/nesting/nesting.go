// Package nesting tracks which structural markers are open while a VRT
// stream is read line by line.
package nesting

import (
	"fmt"

	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
)

// Frame is one currently open structure.
type Frame struct {
	Name  string
	Attrs vrt.Attrs
	Depth int // depth after the frame was entered, 1 for the outermost
}

// Tracker maintains the stack of open structures.
//
// A lenient tracker (the default) pops on every close without checking the
// element name, and lets depth drop below zero on an unmatched close. A
// strict tracker refuses both and leaves its state unchanged.
type Tracker struct {
	frames    []Frame
	depth     int
	strict    bool
	anomalies int
}

// New returns a lenient tracker.
func New() *Tracker {
	return &Tracker{}
}

// NewStrict returns a tracker that validates close markers.
func NewStrict() *Tracker {
	return &Tracker{strict: true}
}

// Depth returns the number of open structures. It can be negative for a
// lenient tracker fed unbalanced input.
func (t *Tracker) Depth() int {
	return t.depth
}

// Anomalies counts close markers that did not match the innermost open
// structure, or had nothing to close.
func (t *Tracker) Anomalies() int {
	return t.anomalies
}

// Enter pushes a frame.
func (t *Tracker) Enter(name string, attrs vrt.Attrs) Frame {
	t.depth++
	f := Frame{Name: name, Attrs: attrs, Depth: t.depth}
	t.frames = append(t.frames, f)
	return f
}

// Leave pops the innermost frame. name is the element named by the close
// marker; it is only compared against the frame, never used to search.
func (t *Tracker) Leave(name string) (Frame, error) {
	if len(t.frames) == 0 {
		if t.strict {
			return Frame{}, fmt.Errorf("</%s>: %w", name, internalerr.ErrUnbalanced)
		}
		t.anomalies++
		t.depth--
		return Frame{}, nil
	}
	top := t.frames[len(t.frames)-1]
	if name != "" && top.Name != name {
		if t.strict {
			return Frame{}, fmt.Errorf("</%s> closes <%s>: %w", name, top.Name, internalerr.ErrMismatchedClose)
		}
		t.anomalies++
	}
	t.frames = t.frames[:len(t.frames)-1]
	t.depth--
	return top, nil
}

// Top returns the innermost open frame.
func (t *Tracker) Top() (Frame, bool) {
	if len(t.frames) == 0 {
		return Frame{}, false
	}
	return t.frames[len(t.frames)-1], true
}

// DepthOf returns the depth at which the innermost frame matching pred was
// opened, and whether such a frame is still open.
func (t *Tracker) DepthOf(pred func(Frame) bool) (int, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if pred(t.frames[i]) {
			return t.frames[i].Depth, true
		}
	}
	return 0, false
}

// InsideOf reports whether an element called name is open.
func (t *Tracker) InsideOf(name string) bool {
	_, ok := t.DepthOf(func(f Frame) bool { return f.Name == name })
	return ok
}

// Observe updates the tracker from a raw line and returns its kind. XML
// declarations do not open a frame.
func (t *Tracker) Observe(line string) (vrt.Kind, error) {
	kind := vrt.Classify(line)
	switch {
	case kind == vrt.KindOpen && vrt.IsDeclaration(line):
	case kind == vrt.KindOpen:
		m, _ := vrt.ParseMarker(line)
		t.Enter(m.Name, m.Attrs)
	case kind == vrt.KindClose:
		if _, err := t.Leave(vrt.MarkerName(line)); err != nil {
			return kind, err
		}
	}
	return kind, nil
}

// Finish reports structures still open at end of input. Only a strict
// tracker fails.
func (t *Tracker) Finish() error {
	if !t.strict || len(t.frames) == 0 {
		return nil
	}
	return fmt.Errorf("<%s> not closed at end of input: %w", t.frames[len(t.frames)-1].Name, internalerr.ErrUnbalanced)
}

// Reset forgets all open frames.
func (t *Tracker) Reset() {
	t.frames = t.frames[:0]
	t.depth = 0
	t.anomalies = 0
}
