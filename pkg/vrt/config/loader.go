package config

import (
	"context"
	"fmt"

	"github.com/cognicore/vrttools/pkg/vrt/extract"
	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
	"github.com/cognicore/vrttools/pkg/vrt/lemgram"
	"github.com/cognicore/vrttools/pkg/vrt/parses"
	"github.com/cognicore/vrttools/pkg/vrt/scramble"
	"github.com/cognicore/vrttools/pkg/vrt/store"
	"github.com/cognicore/vrttools/pkg/vrt/store/sqlite"
	"github.com/cognicore/vrttools/pkg/vrt/timespan"
)

// Loader constructs the tool components described by a Config.
type Loader struct {
	Config *Config
	Warn   Warner
}

// NewLoader returns a loader for cfg (Default() when nil).
func NewLoader(cfg *Config, warn Warner) *Loader {
	if cfg == nil {
		cfg = Default()
	}
	return &Loader{Config: cfg, Warn: warn}
}

// Extractor builds the timespan extraction rules. Without explicit patterns
// every attribute of every element is tried with the default year pattern,
// unless the unknown or fixed mode makes extraction unnecessary.
func (l *Loader) Extractor() (*extract.Extractor, error) {
	ts := l.Config.Timespans
	defaultPattern := extract.DefaultYearPattern
	if ts.TwoDigitYears {
		defaultPattern = extract.DefaultYearPattern2
	}

	specs := ts.Patterns
	if len(specs) == 0 && !ts.Unknown && ts.Fixed == "" {
		specs = []string{extract.Wildcard + " " + extract.Wildcard + " " + defaultPattern}
	}

	var rules []extract.Rule
	for _, spec := range specs {
		r, err := extract.ParseRule(spec, defaultPattern)
		if err != nil {
			return nil, fmt.Errorf("load pattern %q: %w", spec, err)
		}
		rules = append(rules, r...)
	}
	var excludes []extract.Exclude
	for _, spec := range ts.Excludes {
		e, err := extract.ParseExclude(spec)
		if err != nil {
			return nil, fmt.Errorf("load exclude %q: %w", spec, err)
		}
		excludes = append(excludes, e...)
	}
	return extract.NewExtractor(rules, excludes), nil
}

// TimespanCounter builds a counter with the configured rules and mode.
func (l *Loader) TimespanCounter() (*timespan.Counter, error) {
	ex, err := l.Extractor()
	if err != nil {
		return nil, err
	}
	ts := l.Config.Timespans
	return timespan.NewCounter(ex, timespan.Options{
		Unknown:       ts.Unknown,
		Fixed:         ts.Fixed,
		TwoDigitYears: ts.TwoDigitYears,
		CenturyPivot:  ts.CenturyPivot,
		Strict:        ts.Strict,
	}), nil
}

// Scrambler builds the configured scrambler.
func (l *Loader) Scrambler() *scramble.Scrambler {
	sc := l.Config.Scramble
	return scramble.New(sc.Unit, sc.Within, sc.Seed)
}

// LemgramAdder loads the POS mapping and builds the adder. The mapping file
// is required.
func (l *Loader) LemgramAdder() (*lemgram.Adder, error) {
	lg := l.Config.Lemgrams
	if lg.PosMapFile == "" {
		return nil, fmt.Errorf("POS map file: %w", internalerr.ErrMissingConfig)
	}
	posMap, err := LoadMapping(lg.PosMapFile, MappingOptions{Inverse: lg.InversePosMap}, l.Warn)
	if err != nil {
		return nil, fmt.Errorf("load POS map: %w", err)
	}
	return &lemgram.Adder{
		PosMap:          posMap,
		LemmaField:      lg.LemmaField - 1,
		PosField:        lg.PosField - 1,
		SkipEmptyLemmas: lg.SkipEmptyLemmas,
	}, nil
}

// AnnotationStore opens the parse database read-only. The database is
// required.
func (l *Loader) AnnotationStore(ctx context.Context) (store.AnnotationStore, error) {
	if l.Config.Parses.Database == "" {
		return nil, fmt.Errorf("parse database: %w", internalerr.ErrMissingConfig)
	}
	return sqlite.OpenSQLite(ctx, l.Config.Parses.Database)
}

// Merger builds an annotation merger reading from st.
func (l *Loader) Merger(st store.AnnotationStore) *parses.Merger {
	p := l.Config.Parses
	return parses.NewMerger(st, parses.Options{
		OutputDir:                    p.OutputDir,
		LemmaWithoutCompoundBoundary: p.LemmaWithoutCompoundBoundary,
		Sentence:                     p.Sentence,
		Encoding:                     l.Config.Input.Encoding,
	}, l.Warn)
}
