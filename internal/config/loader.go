package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ctrun/ctrun/internal/safe"
)

// EnvConfigDir overrides the base directory holding .ctrun/config.yaml.
const EnvConfigDir = "CTRUN_CONFIG"

// Loader handles loading configuration files.
type Loader struct {
	homeDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. CTRUN_CONFIG environment variable.
//  2. User home directory (~/).
//  3. The system temp directory, for environments without a home directory.
func NewLoader() *Loader {
	if baseDir := os.Getenv(EnvConfigDir); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return &Loader{homeDir: homeDir}
	}

	// No config file will exist here, so Load returns defaults with env overrides.
	return &Loader{homeDir: filepath.Join(os.TempDir(), "ctrun-fallback")}
}

// NewLoaderAt creates a loader rooted at baseDir.
func NewLoaderAt(baseDir string) *Loader {
	return &Loader{homeDir: baseDir}
}

// Path returns the path to the config file.
func (l *Loader) Path() string {
	return filepath.Join(l.homeDir, DefaultDir, ConfigFile)
}

// Load reads the config file over the defaults and applies environment overrides. A missing
// file yields the defaults. The result is not validated: callers apply their own overrides
// (command-line flags) first and then call Validate.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()
	config := Default()

	data, err := safe.ReadFile(path, &safe.ReadOptions{AllowSymlinks: true})
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := LoadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return config, nil
}
