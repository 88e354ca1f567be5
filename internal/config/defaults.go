package config

import (
	"github.com/ctrun/ctrun/internal/launch"
)

// Default values.
const (
	DefaultDir        = ".ctrun"
	ConfigFile        = "config.yaml"
	DefaultLogLevel   = "warn"
	DefaultTestDir    = "."
	DefaultColorMode  = ColorAuto
	DefaultLaunchType = "cppdbg"
)

// Color modes.
const (
	ColorAuto = "auto"
	ColorYes  = "yes"
	ColorNo   = "no"
)

// Default returns a config with sensible defaults.
func Default() *Config {
	launchDefaults := launch.DefaultConfig()

	return &Config{
		Version: SchemaVersion,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Pretty: true,
		},
		Discovery: DiscoveryConfig{
			TestDir:    DefaultTestDir,
			Frameworks: []string{"gtest", "catch2"},
		},
		Run: RunConfig{
			Color: DefaultColorMode,
		},
		Launch: LaunchConfig{
			Type:          launchDefaults.Type,
			Request:       launchDefaults.Request,
			Cwd:           launchDefaults.Cwd,
			CwdRelativeTo: string(launchDefaults.CwdRelativeTo),
		},
	}
}
