package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/pkg/vrt/config"
	"github.com/cognicore/vrttools/pkg/vrt/timespan"
)

func extractTimespansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-timespans [file...]",
		Short: "Count tokens per time value extracted from structure attributes",
		Long: `Extract a time value from the attributes of structural markers and
report the number of tokens under each value as "value<TAB>count" lines.
Tokens outside any extracted value are counted under the empty value.

A pattern is "ELEM[|ELEM...] [ATTR[|ATTR...] [REGEXP [TEMPLATE]]]", where
ELEM and ATTR may be * and TEMPLATE refers to groups as \1. Patterns are
tried in the order given. An exclude is "ELEM[|ELEM...] [ATTR[|ATTR...]]".

Example:
  vrt extract-timespans --pattern 'text date ([0-9]{4})' --exclude 'text datefrom' corpus.vrt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, func(cfg *config.Config) {
				ts := &cfg.Timespans
				if cmd.Flags().Changed("pattern") {
					ts.Patterns, _ = cmd.Flags().GetStringArray("pattern")
				}
				if cmd.Flags().Changed("exclude") {
					ts.Excludes, _ = cmd.Flags().GetStringArray("exclude")
				}
				boolFlag(cmd, "unknown", &ts.Unknown)
				stringFlag(cmd, "fixed", &ts.Fixed)
				boolFlag(cmd, "two-digit-years", &ts.TwoDigitYears)
				intFlag(cmd, "century-pivot", &ts.CenturyPivot)
				boolFlag(cmd, "strict", &ts.Strict)
			})
			if err != nil {
				return err
			}

			counter, err := r.loader.TimespanCounter()
			if err != nil {
				return err
			}

			// one scope per file
			inputs := [][]string{nil}
			if len(args) > 0 {
				inputs = inputs[:0]
				for _, a := range args {
					inputs = append(inputs, []string{a})
				}
			}
			for _, in := range inputs {
				if err := countInput(cmd, r, counter, in); err != nil {
					return err
				}
			}
			r.log.Infof("%d tokens", counter.Tokens())

			w, flush := output(cmd)
			if err := counter.WriteReport(w); err != nil {
				return err
			}
			return flush()
		},
	}

	cmd.Flags().StringArray("pattern", nil, "Extraction pattern (repeatable)")
	cmd.Flags().StringArray("exclude", nil, "Attributes not to extract from (repeatable)")
	cmd.Flags().Bool("unknown", false, "Count all tokens under the empty value")
	cmd.Flags().String("fixed", "", "Count all tokens under this value")
	cmd.Flags().Bool("two-digit-years", false, "Accept two-digit years and expand them in the report")
	cmd.Flags().Int("century-pivot", timespan.DefaultCenturyPivot, "Two-digit years above this are 19xx, others 20xx")
	cmd.Flags().Bool("strict", false, "Fail on unbalanced or mismatched structure markers")

	return cmd
}

func countInput(cmd *cobra.Command, r *run, counter *timespan.Counter, paths []string) error {
	lines, closer, err := r.open(cmd, paths)
	if err != nil {
		return err
	}
	defer closer.Close()
	name := "standard input"
	if len(paths) > 0 {
		name = paths[0]
		r.log.Infof("reading %s", name)
	}
	if err := counter.Process(lines); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
