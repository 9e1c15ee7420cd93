// Package stream provides lazy, single-pass line sources and the file
// plumbing shared by the VRT tools.
package stream

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Lines is a pull-based, non-restartable sequence of raw lines. Each line
// keeps its terminator; the last line of an input may lack one. Next
// returns io.EOF once the sequence is exhausted.
type Lines interface {
	Next() (string, error)
}

// LineReader reads lines from an io.Reader.
type LineReader struct {
	br   *bufio.Reader
	done bool
}

// NewLines wraps r as a line sequence.
func NewLines(r io.Reader) *LineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &LineReader{br: br}
	}
	return &LineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next implements Lines.
func (lr *LineReader) Next() (string, error) {
	if lr.done {
		return "", io.EOF
	}
	line, err := lr.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		lr.done = true
		if line == "" {
			return "", io.EOF
		}
	}
	return line, nil
}

// SliceLines replays a fixed list of lines.
type SliceLines struct {
	lines []string
	pos   int
}

// FromSlice returns a Lines over lines.
func FromSlice(lines []string) *SliceLines {
	return &SliceLines{lines: lines}
}

// FromString splits s into raw lines, keeping terminators.
func FromString(s string) *LineReader {
	return NewLines(strings.NewReader(s))
}

// Next implements Lines.
func (s *SliceLines) Next() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// Each calls fn for every line until the sequence ends or fn fails.
func Each(lines Lines, fn func(line string) error) error {
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
}

// Collect drains lines into a slice.
func Collect(lines Lines) ([]string, error) {
	var out []string
	err := Each(lines, func(line string) error {
		out = append(out, line)
		return nil
	})
	return out, err
}
