package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/pkg/vrt/config"
)

func addLemgramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-lemgrams [file...]",
		Short: "Append a lemgram field to every token",
		Long: `Append a set-valued field of lemgrams ("lemma..pos.1") to every token
line. Parts of speech are mapped through a tab-separated mapping file; an
unmapped part of speech becomes xx. Set-valued lemma and POS fields
("|a|b|") are paired up when they have as many values, otherwise every
combination is used. Blank lines are dropped.

Example:
  vrt add-lemgrams --pos-map-file pos.map --lemma-field 2 --pos-field 3 corpus.vrt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, func(cfg *config.Config) {
				lg := &cfg.Lemgrams
				stringFlag(cmd, "pos-map-file", &lg.PosMapFile)
				boolFlag(cmd, "inverse-pos-map", &lg.InversePosMap)
				intFlag(cmd, "lemma-field", &lg.LemmaField)
				intFlag(cmd, "pos-field", &lg.PosField)
				boolFlag(cmd, "skip-empty-lemmas", &lg.SkipEmptyLemmas)
			})
			if err != nil {
				return err
			}

			adder, err := r.loader.LemgramAdder()
			if err != nil {
				return err
			}
			r.log.Infof("%d POS mappings", len(adder.PosMap))

			lines, closer, err := r.open(cmd, args)
			if err != nil {
				return err
			}
			defer closer.Close()

			w, flush := output(cmd)
			if err := adder.Process(lines, w); err != nil {
				return err
			}
			return flush()
		},
	}

	cmd.Flags().String("pos-map-file", "", "POS mapping file (required)")
	cmd.Flags().Bool("inverse-pos-map", false, "Map from the second column to the first")
	cmd.Flags().Int("lemma-field", 2, "Lemma field number (1-based)")
	cmd.Flags().Int("pos-field", 3, "POS field number (1-based)")
	cmd.Flags().Bool("skip-empty-lemmas", false, "Do not fall back to the word form for empty lemmas")

	return cmd
}
