// Package lemgram appends a lemgram set field to VRT token lines.
//
// A lemgram has the form "<lemma>..<pos>.1"; the target POS comes from a
// mapping of source POS tags, "xx" when the tag is not mapped.
package lemgram

import (
	"bufio"
	"io"
	"strings"

	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// UnknownPOS is used for source tags missing from the mapping.
const UnknownPOS = "xx"

// Default field positions (0-based).
const (
	DefaultLemmaField = 1
	DefaultPosField   = 2
)

// Adder computes the lemgram field of a token line.
type Adder struct {
	PosMap map[string]string
	// LemmaField and PosField are 0-based field indexes.
	LemmaField int
	PosField   int
	// SkipEmptyLemmas keeps an empty lemma instead of falling back to the
	// word form.
	SkipEmptyLemmas bool
}

// SplitSet splits a set-valued field "|a|b|" into its values. "|" is the
// empty set and a value not enclosed in bars is a singleton.
func SplitSet(field string) []string {
	if field == "|" {
		return nil
	}
	if len(field) >= 2 && field[0] == '|' && field[len(field)-1] == '|' {
		return strings.Split(field[1:len(field)-1], "|")
	}
	return []string{field}
}

// JoinSet is the inverse of SplitSet.
func JoinSet(values []string) string {
	if len(values) == 0 {
		return "|"
	}
	return "|" + strings.Join(values, "|") + "|"
}

// Lemgrams returns the distinct lemgrams of a token in first-seen order.
func (a *Adder) Lemgrams(fields []string) []string {
	lemmas := SplitSet(vrt.FieldOr(fields, a.LemmaField, ""))
	if len(lemmas) == 0 || (len(lemmas) == 1 && lemmas[0] == "" && !a.SkipEmptyLemmas) {
		lemmas = []string{vrt.FieldOr(fields, 0, "")}
	}
	poses := SplitSet(vrt.FieldOr(fields, a.PosField, ""))

	var lemgrams []string
	seen := make(map[string]struct{})
	add := func(lemma, pos string) {
		lg := a.lemgram(lemma, pos)
		if _, ok := seen[lg]; ok {
			return
		}
		seen[lg] = struct{}{}
		lemgrams = append(lemgrams, lg)
	}
	if len(lemmas) == len(poses) {
		for i := range lemmas {
			add(lemmas[i], poses[i])
		}
		return lemgrams
	}
	for _, lemma := range lemmas {
		for _, pos := range poses {
			add(lemma, pos)
		}
	}
	return lemgrams
}

func (a *Adder) lemgram(lemma, pos string) string {
	target, ok := a.PosMap[pos]
	if !ok {
		target = UnknownPOS
	}
	return lemma + ".." + target + ".1"
}

// AddLine returns a token line with the lemgram set appended.
func (a *Adder) AddLine(line string) string {
	text := vrt.TrimEOL(line)
	return text + "\t" + JoinSet(a.Lemgrams(strings.Split(text, "\t"))) + "\n"
}

// Process copies lines to w, appending the lemgram field to token lines.
// Structural lines pass through and blank lines are dropped.
func (a *Adder) Process(lines stream.Lines, w io.Writer) error {
	bw := bufio.NewWriter(w)
	err := stream.Each(lines, func(line string) error {
		var err error
		switch vrt.Classify(line) {
		case vrt.KindBlank:
		case vrt.KindToken:
			_, err = bw.WriteString(a.AddLine(line))
		default:
			_, err = bw.WriteString(line)
		}
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
