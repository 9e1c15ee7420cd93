package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/pkg/vrt/config"
	"github.com/cognicore/vrttools/pkg/vrt/parses"
)

func addParsesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-parses file...",
		Short: "Merge dependency parses from a parse database into VRT files",
		Long: `Merge the parses stored in a parse database into the token lines of
each input file. A file is looked up by "<parent dir>/<file name>" and the
result is written to the same relative path under the output directory.

Every merged token starts with the parsed word form, lemma, part of
speech, morphology, dependency head, dependency relation and token index,
followed by the remaining original fields. Sentences get a global id and
the parse state; their original id is kept as local_id. Mismatches
between the parse and the input are reported and the parse values used.

Example:
  vrt add-parses --database parses.db --output-dir merged corpus/1999/*.vrt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, func(cfg *config.Config) {
				stringFlag(cmd, "database", &cfg.Parses.Database)
				stringFlag(cmd, "output-dir", &cfg.Parses.OutputDir)
				stringFlag(cmd, "sentence", &cfg.Parses.Sentence)
				if cmd.Flags().Changed("no-lemma-without-compound-boundary") {
					off, _ := cmd.Flags().GetBool("no-lemma-without-compound-boundary")
					cfg.Parses.LemmaWithoutCompoundBoundary = !off
				}
			})
			if err != nil {
				return err
			}

			st, err := r.loader.AnnotationStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			m := r.loader.Merger(st)
			for _, path := range args {
				r.log.Infof("merging %s into %s", path, m.OutputPath(path))
				if err := m.MergeFile(cmd.Context(), path); err != nil {
					return err
				}
			}
			r.log.Infof("%d sentences, %d warnings", m.Sentences(), r.log.Warnings())
			return nil
		},
	}

	cmd.Flags().String("database", "", "Parse database (required)")
	cmd.Flags().String("output-dir", ".", "Root directory for the merged files")
	cmd.Flags().String("sentence", parses.DefaultSentence, "Name of the sentence structure")
	cmd.Flags().Bool("no-lemma-without-compound-boundary", false, "Do not add a lemma field without compound boundaries")

	return cmd
}
