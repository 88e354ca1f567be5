package cli

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ctrun/ctrun/internal/config"
	"github.com/ctrun/ctrun/internal/logging"
)

// options holds the persistent flags shared by every subcommand, merged over the config file.
type options struct {
	testDir         string
	executables     []string
	noParent        bool
	jobs            int
	executablesOnly bool
	filter          string
	gtestExtraArgs  []string
	catch2ExtraArgs []string
	frameworks      []string
	probeCatch2     bool
	logLevel        string

	cfg      *config.Config
	filterRE *regexp.Regexp
	logger   zerolog.Logger
}

func (o *options) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.testDir, "test-dir", "t", config.DefaultTestDir,
		"Directory to search for test executables, looked up from the working directory and its parents")
	flags.StringSliceVarP(&o.executables, "executables", "e", nil,
		"Test executables to use instead of searching a directory")
	flags.BoolVar(&o.noParent, "no-parent", false,
		"Do not search parent directories for the test directory")
	flags.IntVarP(&o.jobs, "jobs", "j", 0,
		"Number of parallel workers (0 = one per CPU)")
	flags.BoolVar(&o.executablesOnly, "executables-only", false,
		"Treat each executable as a single test instead of listing its tests")
	flags.StringVarP(&o.filter, "filter", "f", "",
		"Only include tests whose name matches this regular expression")
	flags.StringArrayVar(&o.gtestExtraArgs, "gtest-extra-args", nil,
		"Extra argument passed to GoogleTest executables (repeatable)")
	flags.StringArrayVar(&o.catch2ExtraArgs, "catch2-extra-args", nil,
		"Extra argument passed to Catch2 executables in --executables-only mode (repeatable)")
	flags.StringSliceVar(&o.frameworks, "frameworks", nil,
		"Test frameworks to detect (gtest, catch2)")
	flags.BoolVar(&o.probeCatch2, "probe-catch2", false,
		"Run --libidentify on executables without framework symbols to detect stripped Catch2 binaries")
	flags.StringVar(&o.logLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error, disabled)")

	cmd.MarkFlagsMutuallyExclusive("test-dir", "executables")
}

// load reads the config, lets explicitly set flags override it, and builds the logger.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("test-dir") {
		cfg.Discovery.TestDir = o.testDir
	}
	if flags.Changed("no-parent") {
		cfg.Discovery.NoParent = o.noParent
	}
	if flags.Changed("jobs") {
		cfg.Discovery.Jobs = o.jobs
		cfg.Run.Jobs = o.jobs
	}
	if flags.Changed("gtest-extra-args") {
		cfg.Discovery.GTestExtraArgs = o.gtestExtraArgs
	}
	if flags.Changed("catch2-extra-args") {
		cfg.Discovery.Catch2ExtraArgs = o.catch2ExtraArgs
	}
	if flags.Changed("frameworks") {
		cfg.Discovery.Frameworks = o.frameworks
	}
	if flags.Changed("probe-catch2") {
		cfg.Discovery.ProbeCatch2 = o.probeCatch2
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if err := applyCommandFlags(flags, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.filterRE = nil
	if o.filter != "" {
		re, err := regexp.Compile(o.filter)
		if err != nil {
			return fmt.Errorf("invalid --filter: %w", err)
		}
		o.filterRE = re
	}

	o.cfg = cfg
	o.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})

	return nil
}

// applyCommandFlags copies subcommand flags that shadow config fields into cfg, so a flag can
// replace a config value that would not validate.
func applyCommandFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	strs := map[string]*string{
		"color":                  &cfg.Run.Color,
		"launch-type":            &cfg.Launch.Type,
		"launch-request":         &cfg.Launch.Request,
		"launch-cwd":             &cfg.Launch.Cwd,
		"launch-cwd-relative-to": &cfg.Launch.CwdRelativeTo,
	}
	for name, target := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}

	if flags.Changed("run-jobs") {
		jobs, err := flags.GetInt("run-jobs")
		if err != nil {
			return err
		}
		cfg.Run.Jobs = jobs
	}
	if flags.Changed("pretty-printing") {
		pretty, err := flags.GetBool("pretty-printing")
		if err != nil {
			return err
		}
		cfg.Launch.PrettyPrinting = pretty
	}

	return nil
}
