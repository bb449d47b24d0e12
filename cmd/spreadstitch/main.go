package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuito/spreadstitch/internal/batch"
	"github.com/yuito/spreadstitch/internal/logging"
	"github.com/yuito/spreadstitch/internal/stitch"
)

type cliOptions struct {
	Inputs  []string
	Quiet   bool
	LogFile string
	Batch   batch.Options
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spreadstitch [flags] CBZ...",
		Short: "Stitch comic archive pages into right-to-left two-page spreads",
		Long: `spreadstitch rewrites cbz archives so that facing pages are merged
into single spread images, for e-readers that cannot compose
two-page layouts natively.

Pages are reordered for right-to-left reading, so the book starts
at the last page. A notice page telling the reader to jump to the
back is inserted first unless -w is given.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}

			logger, err := logging.New(opts.Quiet, opts.LogFile)
			if err != nil {
				return err
			}
			defer logger.Close()

			runner, err := batch.NewRunner(opts.Batch, logger)
			if err != nil {
				logger.Error("%v", err)
				return err
			}

			if err := runner.Run(cmd.Context(), opts.Inputs); err != nil {
				logger.Error("%v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolP("delete-originals", "d", false, "Delete the original, unstitched archives instead of keeping _original copies")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print status updates; errors are still printed")
	cmd.Flags().BoolP("volume", "v", false, "Combine all archives into one volume, placed next to the first archive")
	cmd.Flags().BoolP("skip-notice-page", "w", false, "Do not insert the page telling the reader the book starts at the back")
	cmd.Flags().String("notice-text", stitch.DefaultNoticeText, "Text drawn on the notice page")
	cmd.Flags().String("font", "", "TTF font file for the notice page (built-in Go Regular when unset)")
	cmd.Flags().Float64("font-size", stitch.DefaultFontSize, "Notice page font size in points")
	cmd.Flags().Int("jobs", 0, "Number of archives to process in parallel (default: number of CPUs)")
	cmd.Flags().String("log-file", "", "Also append log lines to this file")

	return cmd
}

func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	inputs, err := expandInputs(args)
	if err != nil {
		return cliOptions{}, err
	}

	flags := cmd.Flags()
	opts := cliOptions{Inputs: inputs}
	opts.Quiet, _ = flags.GetBool("quiet")
	opts.LogFile, _ = flags.GetString("log-file")
	opts.Batch.DeleteOriginals, _ = flags.GetBool("delete-originals")
	opts.Batch.Volume, _ = flags.GetBool("volume")
	opts.Batch.Workers, _ = flags.GetInt("jobs")
	opts.Batch.Stitch.SkipNotice, _ = flags.GetBool("skip-notice-page")
	opts.Batch.Stitch.NoticeText, _ = flags.GetString("notice-text")
	opts.Batch.Stitch.FontPath, _ = flags.GetString("font")
	opts.Batch.Stitch.FontSize, _ = flags.GetFloat64("font-size")

	return opts, nil
}

// expandInputs expands glob patterns in args for shells that pass them
// through verbatim. Plain paths are kept as-is.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			inputs = append(inputs, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
