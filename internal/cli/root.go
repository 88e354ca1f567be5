package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the ctrun command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ctrun",
		Short: "ctrun - discover, list and run C++ unit tests",
		Long: `Find GoogleTest and Catch2 test executables under a build directory and work with
the individual tests inside them.

Executables are recognised by the symbols in their ELF symbol table, then asked to list
their own tests. The resulting catalog can be printed, turned into VS Code debugger launch
configurations, or run in parallel.

Defaults come from ~/.ctrun/config.yaml (base directory overridable with CTRUN_CONFIG) and
CTRUN_* environment variables; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	opts.addFlags(rootCmd)

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newLaunchJSONCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
