package cli

import (
	"github.com/spf13/cobra"

	"github.com/ctrun/ctrun/internal/cli/helpers"
	"github.com/ctrun/ctrun/internal/launch"
)

func newLaunchJSONCmd(opts *options) *cobra.Command {
	// The launch-* and pretty-printing flags are merged into the config before RunE.
	var (
		launchType         string
		launchRequest      string
		launchCwd          string
		cwdRelativeTo      string
		addExecPathToName  bool
		configurationsOnly bool
		stopAtEntry        bool
		prettyPrinting     bool
	)

	cmd := &cobra.Command{
		Use:   "launch-json",
		Short: "Generate VS Code launch configurations for each test",
		Long: `Print a launch.json document with one debugger configuration per test.

Each configuration runs the test's executable with the arguments that select only that
test. The working directory is resolved relative to the executable, the test's source
file, or nothing, and must exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := opts.cfg.Launch
			relativeTo, err := launch.ParseCwdRelativeTo(merged.CwdRelativeTo)
			if err != nil {
				return err
			}

			cfg := launch.Config{
				Type:               merged.Type,
				Request:            merged.Request,
				Cwd:                merged.Cwd,
				CwdRelativeTo:      relativeTo,
				AddExecPathToName:  addExecPathToName,
				ConfigurationsOnly: configurationsOnly,
				StopAtEntry:        stopAtEntry,
				PrettyPrinting:     merged.PrettyPrinting,
			}

			tests, err := opts.collectTests(cmd.Context())
			if err != nil {
				return err
			}

			return launch.Write(cmd.OutOrStdout(), tests, cfg)
		},
	}

	defaults := launch.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&launchType, "launch-type", defaults.Type, "Debugger type of the configurations")
	flags.StringVar(&launchRequest, "launch-request", defaults.Request, "Request type of the configurations")
	flags.StringVar(&launchCwd, "launch-cwd", defaults.Cwd,
		"Working directory of the tests, see --launch-cwd-relative-to")
	helpers.AddEnumFlag(cmd, &cwdRelativeTo, "launch-cwd-relative-to", string(defaults.CwdRelativeTo),
		"What --launch-cwd is relative to", []string{
			string(launch.CwdRelativeToExecutable),
			string(launch.CwdRelativeToCppFile),
			string(launch.CwdRelativeToNone),
		})
	flags.BoolVar(&addExecPathToName, "add-exec-path-to-name", false,
		"Append the executable path to each name, to tell apart tests with the same name")
	flags.BoolVar(&configurationsOnly, "configurations-only", false, "Only print the configurations array")
	flags.BoolVar(&stopAtEntry, "stop-at-entry", false, "Set stopAtEntry in each configuration")
	flags.BoolVar(&prettyPrinting, "pretty-printing", false, "Enable pretty printing in the debugger")

	return cmd
}
