// Package diag writes the human-readable diagnostics of the VRT tools to a
// side channel, never to the primary output stream.
package diag

import (
	"crypto/rand"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/oklog/ulid/v2"
)

// Logger prefixes every diagnostic with the tool name. Info lines are only
// written in verbose mode and carry the run ID.
type Logger struct {
	log     *log.Logger
	runID   string
	verbose bool

	warnLabel  *color.Color
	errorLabel *color.Color
	infoLabel  *color.Color

	mu       sync.Mutex
	warnings int
}

// New creates a logger writing to w (os.Stderr when nil). Labels are
// coloured only when w is a terminal and NO_COLOR is unset.
func New(tool string, w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := &Logger{
		log:        log.New(w, tool+": ", 0),
		runID:      ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String(),
		verbose:    verbose,
		warnLabel:  color.New(color.FgYellow, color.Bold),
		errorLabel: color.New(color.FgRed, color.Bold),
		infoLabel:  color.New(color.FgCyan),
	}
	colorize := isTerminal(w) && os.Getenv("NO_COLOR") == ""
	for _, c := range []*color.Color{l.warnLabel, l.errorLabel, l.infoLabel} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New("", io.Discard, false)
}

// RunID identifies this invocation in verbose output.
func (l *Logger) RunID() string {
	return l.runID
}

// Warnf reports a recoverable problem.
func (l *Logger) Warnf(format string, args ...any) {
	l.mu.Lock()
	l.warnings++
	l.mu.Unlock()
	l.log.Printf(l.warnLabel.Sprint("Warning:")+" "+format, args...)
}

// Errorf reports an unrecoverable problem.
func (l *Logger) Errorf(format string, args ...any) {
	l.log.Printf(l.errorLabel.Sprint("Error:")+" "+format, args...)
}

// Infof reports progress in verbose mode.
func (l *Logger) Infof(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.log.Printf(l.infoLabel.Sprint("["+l.runID+"]")+" "+format, args...)
}

// Warnings returns how many warnings have been reported.
func (l *Logger) Warnings() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warnings
}
