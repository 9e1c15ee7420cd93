package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/pkg/vrt/config"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
	"github.com/cognicore/vrttools/pkg/vrt/wrap"
)

func wrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap [file...]",
		Short: "Join partial documents into one well-formed stream",
		Long: `Concatenate the inputs, keep only the first XML declaration and wrap
everything in one element. Without an element only the repeated
declarations are removed.

Example:
  vrt wrap --element corpus part1.xml part2.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, func(cfg *config.Config) {
				stringFlag(cmd, "element", &cfg.Input.WrapElement)
			})
			if err != nil {
				return err
			}

			rc, err := r.reader(cmd, args)
			if err != nil {
				return err
			}
			defer rc.Close()

			w, flush := output(cmd)
			if _, err := io.Copy(w, wrap.New(stream.NewLines(rc), r.cfg.Input.WrapElement)); err != nil {
				return err
			}
			return flush()
		},
	}

	cmd.Flags().String("element", "", "Wrapper element (defaults to --wrap-element)")

	return cmd
}
