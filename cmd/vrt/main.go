package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/vrttools/internal/diag"
	"github.com/cognicore/vrttools/pkg/vrt/config"
	"github.com/cognicore/vrttools/pkg/vrt/stream"
	"github.com/cognicore/vrttools/pkg/vrt/wrap"
)

var version = "0.1.0"

func main() {
	signal.Ignore(syscall.SIGPIPE)
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(context.Background())
	if err == nil || stream.IsBrokenPipe(err) {
		return 0
	}
	name := root.Name()
	if cmd != nil {
		name = cmd.CommandPath()
	}
	diag.New(name, errOut, false).Errorf("%v", err)
	return 1
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vrt",
		Short: "Streaming tools for VRT corpus files",
		Long: `vrt rewrites and summarises corpora in the VRT format: one token per
line with tab-separated annotation fields, structures marked by
<name attr="value"> and </name> lines.

Inputs are the file arguments (gzip and non-UTF-8 encodings are handled
transparently) or standard input. Diagnostics go to standard error.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "YAML profile with tool defaults")
	root.PersistentFlags().String("encoding", "", "Input encoding (default UTF-8)")
	root.PersistentFlags().String("wrap-element", "", "Wrap concatenated input fragments in this element")
	root.PersistentFlags().BoolP("verbose", "v", false, "Report progress on standard error")

	root.AddCommand(scrambleCmd())
	root.AddCommand(extractTimespansCmd())
	root.AddCommand(addParsesCmd())
	root.AddCommand(addLemgramsCmd())
	root.AddCommand(wrapCmd())
	return root
}

// run is the per-invocation state shared by the subcommands.
type run struct {
	cfg    *config.Config
	log    *diag.Logger
	loader *config.Loader
}

// setup loads the profile and applies the persistent flags. apply lets a
// subcommand overlay its own flags before the result is validated.
func setup(cmd *cobra.Command, apply func(cfg *config.Config)) (*run, error) {
	profile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := config.Default()
	if profile != "" {
		var err error
		if cfg, err = config.Load(profile); err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Input.Encoding, _ = cmd.Flags().GetString("encoding")
	}
	if cmd.Flags().Changed("wrap-element") {
		cfg.Input.WrapElement, _ = cmd.Flags().GetString("wrap-element")
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := diag.New(cmd.CommandPath(), cmd.ErrOrStderr(), verbose)
	if profile != "" {
		log.Infof("loaded profile %s", profile)
	}
	return &run{cfg: cfg, log: log, loader: config.NewLoader(cfg, log)}, nil
}

// reader opens the concatenated inputs. No paths means standard input.
func (r *run) reader(cmd *cobra.Command, paths []string) (io.ReadCloser, error) {
	if len(paths) == 0 {
		return stream.NewReader(cmd.InOrStdin(), stream.Stdin, r.cfg.Input.Encoding)
	}
	return stream.OpenAll(paths, r.cfg.Input.Encoding)
}

// open returns the inputs as one line stream, wrapped when a wrapper
// element is configured.
func (r *run) open(cmd *cobra.Command, paths []string) (stream.Lines, io.Closer, error) {
	rc, err := r.reader(cmd, paths)
	if err != nil {
		return nil, nil, err
	}
	var lines stream.Lines = stream.NewLines(rc)
	if r.cfg.Input.WrapElement != "" {
		lines = wrap.New(lines, r.cfg.Input.WrapElement)
	}
	return lines, rc, nil
}

// output buffers standard output; the returned function flushes it.
func output(cmd *cobra.Command) (*bufio.Writer, func() error) {
	w := bufio.NewWriterSize(cmd.OutOrStdout(), 64*1024)
	return w, w.Flush
}

// stringFlag copies a flag into dst when it was given on the command line.
func stringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func boolFlag(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

func intFlag(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}
