package config

import (
	"errors"
	"fmt"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/launch"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate checks the config for values no command could use.
func (c *Config) Validate() error {
	var errs []error

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level %q must be one of trace, debug, info, warn, error, disabled", c.Log.Level))
	}
	if c.Discovery.Jobs < 0 {
		errs = append(errs, fmt.Errorf("discovery.jobs must not be negative, got %d", c.Discovery.Jobs))
	}
	if c.Run.Jobs < 0 {
		errs = append(errs, fmt.Errorf("run.jobs must not be negative, got %d", c.Run.Jobs))
	}
	if _, err := c.ExecutableTypes(); err != nil {
		errs = append(errs, fmt.Errorf("discovery.frameworks: %w", err))
	}
	if err := ValidateColorMode(c.Run.Color); err != nil {
		errs = append(errs, fmt.Errorf("run.color: %w", err))
	}
	if _, err := launch.ParseCwdRelativeTo(c.Launch.CwdRelativeTo); err != nil {
		errs = append(errs, fmt.Errorf("launch.cwd_relative_to: %w", err))
	}

	return errors.Join(errs...)
}

// ExecutableTypes parses Discovery.Frameworks.
func (c *Config) ExecutableTypes() ([]catalog.ExecutableType, error) {
	if len(c.Discovery.Frameworks) == 0 {
		return nil, fmt.Errorf("at least one framework must be enabled")
	}

	types := make([]catalog.ExecutableType, 0, len(c.Discovery.Frameworks))
	for _, name := range c.Discovery.Frameworks {
		typ, err := catalog.ParseExecutableType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
	}
	return types, nil
}

// ValidateColorMode checks a colour mode value.
func ValidateColorMode(mode string) error {
	switch mode {
	case ColorAuto, ColorYes, ColorNo:
		return nil
	default:
		return fmt.Errorf("invalid colour mode %q (expected auto, yes or no)", mode)
	}
}
