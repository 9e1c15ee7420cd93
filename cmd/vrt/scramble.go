package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/pkg/vrt/config"
	"github.com/cognicore/vrttools/pkg/vrt/scramble"
)

func scrambleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scramble [file...]",
		Short: "Shuffle the order of units inside enclosing structures",
		Long: `Shuffle the units (by default sentences) inside each enclosing
structure (by default text). Units are kept whole and everything outside
the enclosing structures is copied unchanged. The same non-zero seed
always gives the same order; seed 0 picks a random one.

Example:
  vrt scramble --unit paragraph --within text --seed 42 corpus.vrt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, func(cfg *config.Config) {
				stringFlag(cmd, "unit", &cfg.Scramble.Unit)
				stringFlag(cmd, "within", &cfg.Scramble.Within)
				if cmd.Flags().Changed("seed") {
					cfg.Scramble.Seed, _ = cmd.Flags().GetInt64("seed")
				}
			})
			if err != nil {
				return err
			}

			lines, closer, err := r.open(cmd, args)
			if err != nil {
				return err
			}
			defer closer.Close()

			w, flush := output(cmd)
			sc := r.loader.Scrambler()
			r.log.Infof("scrambling %s within %s, seed %d",
				r.cfg.Scramble.Unit, r.cfg.Scramble.Within, r.cfg.Scramble.Seed)
			if err := sc.Process(lines, w); err != nil {
				return err
			}
			return flush()
		},
	}

	cmd.Flags().String("unit", scramble.DefaultUnit, "Structure whose instances are shuffled")
	cmd.Flags().String("within", scramble.DefaultWithin, "Structure inside which units are shuffled")
	cmd.Flags().Int64("seed", scramble.DefaultSeed, "Random seed (0 for a random order on every run)")

	return cmd
}
