package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ctrun/ctrun/internal/cli/helpers"
	"github.com/ctrun/ctrun/internal/config"
	"github.com/ctrun/ctrun/internal/runner"
)

// ErrTestsFailed is returned by run when at least one test failed.
var ErrTestsFailed = errors.New("tests failed")

func newRunCmd(opts *options) *cobra.Command {
	// color and runJobs are merged into the config before RunE.
	var (
		color   string
		junit   string
		runJobs int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every test in parallel",
		Long: `Run each test as its own process and print a progress line as each one finishes,
followed by a summary. The output of failing tests is shown below their progress line.

The command fails when any test fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := opts.collectTests(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := runner.New(runner.Config{
				Jobs:   opts.cfg.Run.Jobs,
				Color:  useColor(opts.cfg.Run.Color, out),
				Output: out,
				Logger: opts.logger,
			})

			summary, err := r.RunAll(cmd.Context(), tests)
			if err != nil {
				return err
			}

			if junit != "" {
				if err := runner.WriteJUnitFile(junit, summary, opts.logger); err != nil {
					return err
				}
			}

			if !summary.OK() {
				return fmt.Errorf("%w: %d of %d", ErrTestsFailed, summary.Failed, summary.Total())
			}
			return nil
		},
	}

	helpers.AddEnumFlag(cmd, &color, "color", config.ColorAuto, "Colour test output",
		[]string{config.ColorAuto, config.ColorYes, config.ColorNo})
	cmd.Flags().StringVar(&junit, "junit", "", "Write a JUnit XML report to this file")
	cmd.Flags().IntVar(&runJobs, "run-jobs", 0, "Number of tests run at once (0 = one per CPU)")

	return cmd
}

// useColor resolves a colour mode. auto colours only when out is a terminal.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorYes:
		return true
	case config.ColorNo:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
