// Package config provides configuration loading and management.
package config

// SchemaVersion is the current config file schema version.
const SchemaVersion = "1"

// Config is the ctrun configuration stored at ~/.ctrun/config.yaml. Every field can be
// overridden through the environment variable named by its env tag, and command-line flags
// override both.
type Config struct {
	Version   string          `yaml:"version"`
	Log       LogConfig       `yaml:"log"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Run       RunConfig       `yaml:"run"`
	Launch    LaunchConfig    `yaml:"launch"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"CTRUN_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"CTRUN_LOG_PRETTY"`
}

// DiscoveryConfig controls how test executables are found and listed.
type DiscoveryConfig struct {
	// TestDir is the directory to scan, searched upward from the working directory when
	// relative.
	TestDir  string `yaml:"test_dir" env:"CTRUN_TEST_DIR"`
	NoParent bool   `yaml:"no_parent" env:"CTRUN_NO_PARENT"`
	// Jobs is the worker count for scanning and enumeration. Zero means one per CPU.
	Jobs int `yaml:"jobs" env:"CTRUN_JOBS"`
	// Frameworks lists the enabled frameworks: gtest, catch2.
	Frameworks []string `yaml:"frameworks" env:"CTRUN_FRAMEWORKS"`
	// ProbeCatch2 runs --libidentify on executables that carry no framework symbol.
	ProbeCatch2     bool     `yaml:"probe_catch2" env:"CTRUN_PROBE_CATCH2"`
	GTestExtraArgs  []string `yaml:"gtest_extra_args" env:"CTRUN_GTEST_EXTRA_ARGS"`
	Catch2ExtraArgs []string `yaml:"catch2_extra_args" env:"CTRUN_CATCH2_EXTRA_ARGS"`
}

// RunConfig controls test execution.
type RunConfig struct {
	// Color is auto, yes or no.
	Color string `yaml:"color" env:"CTRUN_COLOR"`
	// Jobs is the number of tests run at once. Zero means one per CPU.
	Jobs int `yaml:"jobs" env:"CTRUN_RUN_JOBS"`
}

// LaunchConfig holds defaults for generated debugger launch configurations.
type LaunchConfig struct {
	Type           string `yaml:"type" env:"CTRUN_LAUNCH_TYPE"`
	Request        string `yaml:"request" env:"CTRUN_LAUNCH_REQUEST"`
	Cwd            string `yaml:"cwd" env:"CTRUN_LAUNCH_CWD"`
	CwdRelativeTo  string `yaml:"cwd_relative_to" env:"CTRUN_LAUNCH_CWD_RELATIVE_TO"`
	PrettyPrinting bool   `yaml:"pretty_printing" env:"CTRUN_LAUNCH_PRETTY_PRINTING"`
}
