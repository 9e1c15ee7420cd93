package timespan

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cognicore/vrttools/pkg/vrt"
	"github.com/cognicore/vrttools/pkg/vrt/extract"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
)

// DefaultCenturyPivot separates 19xx from 20xx when expanding two-digit
// years.
const DefaultCenturyPivot = 20

// Options configures a Counter.
type Options struct {
	// Unknown counts every token under the empty value.
	Unknown bool
	// Fixed counts every token under this value when non-empty.
	Fixed string
	// TwoDigitYears expands two-digit values in the report.
	TwoDigitYears bool
	// CenturyPivot: a two-digit value above the pivot becomes 19xx,
	// otherwise 20xx.
	CenturyPivot int
	// Strict fails on close markers that do not match the innermost open
	// structure and on structures left open at end of input.
	Strict bool
}

// Counter aggregates token counts per extraction context.
type Counter struct {
	opts   Options
	ex     *extract.Extractor
	scope  *extract.Scope
	counts map[string]int64
	tokens int64
}

// NewCounter creates an empty counter. ex may be nil in Unknown or Fixed
// mode.
func NewCounter(ex *extract.Extractor, opts Options) *Counter {
	if ex == nil {
		ex = extract.NewExtractor(nil, nil)
	}
	return &Counter{
		opts:   opts,
		ex:     ex,
		scope:  newScope(ex, opts.Strict),
		counts: make(map[string]int64),
	}
}

func newScope(ex *extract.Extractor, strict bool) *extract.Scope {
	if strict {
		return extract.NewStrictScope(ex)
	}
	return extract.NewScope(ex)
}

// ProcessLine consumes one raw line.
func (c *Counter) ProcessLine(line string) error {
	kind, err := c.scope.Observe(line)
	if err != nil || kind != vrt.KindToken {
		return err
	}
	c.tokens++
	switch {
	case c.opts.Fixed != "":
		c.counts[c.opts.Fixed]++
	case c.opts.Unknown:
		c.counts[""]++
	default:
		c.counts[c.scope.Value()]++
	}
	return nil
}

// Process consumes a whole stream. Each input file should get its own call
// so that unbalanced markers in one file do not leak into the next.
func (c *Counter) Process(lines stream.Lines) error {
	c.scope = newScope(c.ex, c.opts.Strict)
	lineno := 0
	err := stream.Each(lines, func(line string) error {
		lineno++
		if err := c.ProcessLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.scope.Finish()
}

// Tokens returns the number of token lines seen.
func (c *Counter) Tokens() int64 {
	return c.tokens
}

// Row is one line of the report.
type Row struct {
	Value string
	Count int64
}

// Report returns counts sorted by value. Expanded two-digit years are
// merged with identical four-digit values.
func (c *Counter) Report() []Row {
	merged := make(map[string]int64, len(c.counts))
	for value, n := range c.counts {
		merged[c.expand(value)] += n
	}
	rows := make([]Row, 0, len(merged))
	for value, n := range merged {
		rows = append(rows, Row{Value: value, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Value < rows[j].Value
	})
	return rows
}

func (c *Counter) expand(value string) string {
	if !c.opts.TwoDigitYears || len(value) != 2 {
		return value
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return value
	}
	if n > c.opts.CenturyPivot {
		return "19" + value
	}
	return "20" + value
}

// WriteReport writes "value<TAB>count" lines.
func (c *Counter) WriteReport(w io.Writer) error {
	for _, row := range c.Report() {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", row.Value, row.Count); err != nil {
			return err
		}
	}
	return nil
}
