// Package parses merges externally produced per-token parses into the token
// lines of VRT sentences.
//
// Alignment is purely positional: the Nth sentence of an input document is
// matched with the Nth sentence the annotation store returns for it, and
// token i of that sentence with external token i. Divergences are reported
// as warnings and the external values are used anyway.
package parses

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/store"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// DefaultSentence is the name of the sentence structure.
const DefaultSentence = "sentence"

// CompoundBoundary marks compound parts in lemmas.
const CompoundBoundary = "|"

// mergedFields lists, in output order, the external fields placed in front
// of the original token's remaining fields: form, lemma, POS, morphology,
// dependency head, dependency relation and the token index.
var mergedFields = []int{1, 3, 5, 7, 9, 11, 0}

// Warner receives non-fatal diagnostics.
type Warner interface {
	Warnf(format string, args ...any)
}

// Options configures a Merger.
type Options struct {
	// OutputDir is the root under which output files mirror the
	// "<dir>/<file>" document key of each input.
	OutputDir string
	// LemmaWithoutCompoundBoundary inserts a copy of the merged lemma with
	// compound boundaries removed right after the word form.
	LemmaWithoutCompoundBoundary bool
	// Sentence names the sentence structure; DefaultSentence when empty.
	Sentence string
	// Encoding of the input files; UTF-8 when empty.
	Encoding string
}

// Merger rewrites input documents one at a time. The global sentence
// counter runs across all documents merged by the same Merger, so a Merger
// must not be shared between concurrent workers.
type Merger struct {
	store  store.AnnotationStore
	opts   Options
	warn   Warner
	sentnr int
}

// NewMerger creates a merger reading parses from st.
func NewMerger(st store.AnnotationStore, opts Options, warn Warner) *Merger {
	if opts.Sentence == "" {
		opts.Sentence = DefaultSentence
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Merger{store: st, opts: opts, warn: warn}
}

// Sentences returns the number of sentences written so far.
func (m *Merger) Sentences() int {
	return m.sentnr
}

// DocKey returns the annotation store key of an input file: the last
// component of its directory as written, and the file name. A leading
// "./" is kept, so "./a.vrt" and "a.vrt" are distinct keys.
func DocKey(path string) string {
	dir, file := filepath.Split(path)
	dir = strings.TrimRight(dir, string(filepath.Separator))
	last := dir[strings.LastIndexByte(dir, filepath.Separator)+1:]
	if last == "" {
		return file
	}
	return last + "/" + file
}

// OutputPath returns where the merged version of path is written.
func (m *Merger) OutputPath(path string) string {
	return filepath.Join(m.opts.OutputDir, filepath.FromSlash(DocKey(path)))
}

// MergeFile merges the parses of one input file and writes the result under
// the output directory.
func (m *Merger) MergeFile(ctx context.Context, path string) (err error) {
	key := DocKey(path)
	sentences, err := m.store.SentenceParses(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch parses for %s: %w", key, err)
	}

	in, err := stream.Open(path, m.opts.Encoding)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := stream.Create(m.OutputPath(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	return m.Merge(path, stream.NewLines(in), sentences, out)
}

// sentence buffers the lines of one sentence. Token lines are kept split
// into fields, other lines verbatim.
type sentence struct {
	open  string
	items []item
}

type item struct {
	raw    string
	fields []string // nil for non-token lines
}

func (s *sentence) tokens() int {
	n := 0
	for _, it := range s.items {
		if it.fields != nil {
			n++
		}
	}
	return n
}

// Merge rewrites one document read from lines. name identifies the document
// in warnings.
func (m *Merger) Merge(name string, lines stream.Lines, parsed []store.Sentence, w io.Writer) error {
	var (
		cur      *sentence
		fileSent int
		depth    int // structures opened inside the current sentence
	)
	return stream.Each(lines, func(line string) error {
		kind := vrt.Classify(line)
		if cur == nil {
			if kind == vrt.KindOpen && vrt.MarkerName(line) == m.opts.Sentence {
				cur = &sentence{open: line}
				depth = 0
				return nil
			}
			return writeLine(w, line)
		}

		switch kind {
		case vrt.KindClose:
			if depth == 0 && vrt.MarkerName(line) == m.opts.Sentence {
				err := m.writeSentence(w, name, fileSent, cur, parsed, line)
				cur = nil
				fileSent++
				m.sentnr++
				return err
			}
			depth--
			cur.items = append(cur.items, item{raw: line})
		case vrt.KindOpen:
			depth++
			cur.items = append(cur.items, item{raw: line})
		default:
			// a blank line is an empty token
			cur.items = append(cur.items, item{raw: line, fields: vrt.Fields(line)})
		}
		return nil
	})
}

func (m *Merger) writeSentence(w io.Writer, name string, fileSent int, s *sentence, parsed []store.Sentence, closeLine string) error {
	if fileSent >= len(parsed) {
		m.warn.Warnf("no parse for sentence: file %s, sentence %d (%d parsed sentences)",
			name, fileSent+1, len(parsed))
		if err := writeLine(w, s.open); err != nil {
			return err
		}
		for _, it := range s.items {
			if err := writeLine(w, it.raw); err != nil {
				return err
			}
		}
		return writeLine(w, closeLine)
	}

	p := parsed[fileSent]
	if n := s.tokens(); n != len(p.Tokens) {
		m.warn.Warnf("token count differs from parse: %d != %d, file %s, sentence %d",
			n, len(p.Tokens), name, fileSent+1)
	}

	if err := writeLine(w, m.rewriteOpen(s.open, p.Status)); err != nil {
		return err
	}
	tokennr := 0
	for _, it := range s.items {
		if it.fields == nil {
			if err := writeLine(w, it.raw); err != nil {
				return err
			}
			continue
		}
		var fields []string
		if tokennr < len(p.Tokens) {
			fields = m.mergeToken(it.fields, p.Tokens[tokennr], name, fileSent)
		} else {
			fields = it.fields
		}
		tokennr++
		if err := writeLine(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return writeLine(w, closeLine)
}

// mergeToken places the external fields in front of the original fields
// after the word form.
func (m *Merger) mergeToken(orig, ext []string, name string, fileSent int) []string {
	form := vrt.FieldOr(orig, 0, "")
	extForm := vrt.FieldOr(ext, store.FieldForm, "")
	if form != extForm {
		if form == "" && len(orig) == 1 {
			return orig
		}
		m.warn.Warnf("parse does not match original: %q != %q, file %s, sentence %d",
			form, extForm, name, fileSent+1)
	}

	merged := make([]string, 0, len(mergedFields)+len(orig))
	for _, i := range mergedFields {
		merged = append(merged, vrt.FieldOr(ext, i, ""))
	}
	merged = append(merged, orig[1:]...)

	if m.opts.LemmaWithoutCompoundBoundary {
		bare := strings.ReplaceAll(merged[1], CompoundBoundary, "")
		merged = append(merged[:1], append([]string{bare}, merged[1:]...)...)
	}
	return merged
}

// rewriteOpen keeps the input numbering as local_id and adds the global
// sentence number and the parse state.
func (m *Merger) rewriteOpen(open, status string) string {
	s := strings.TrimSuffix(vrt.TrimEOL(open), ">")
	s = strings.ReplaceAll(s, " id=", " local_id=")
	return s + ` id="` + strconv.Itoa(m.sentnr) + `" parse_state="` + status + `">`
}

func writeLine(w io.Writer, line string) error {
	_, err := io.WriteString(w, vrt.TrimEOL(line)+"\n")
	return err
}
