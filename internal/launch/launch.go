// Package launch renders tests as VS Code debugger launch configurations.
package launch

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ctrun/ctrun/internal/catalog"
)

// Version is the launch.json schema version.
const Version = "0.2.0"

// CwdRelativeTo selects what a configuration's working directory is relative to.
type CwdRelativeTo string

const (
	CwdRelativeToExecutable CwdRelativeTo = "executable"
	CwdRelativeToCppFile    CwdRelativeTo = "cpp-file"
	CwdRelativeToNone       CwdRelativeTo = "none"
)

// ParseCwdRelativeTo validates s as a CwdRelativeTo value.
func ParseCwdRelativeTo(s string) (CwdRelativeTo, error) {
	switch v := CwdRelativeTo(s); v {
	case CwdRelativeToExecutable, CwdRelativeToCppFile, CwdRelativeToNone:
		return v, nil
	default:
		return "", fmt.Errorf("invalid cwd base %q (expected executable, cpp-file or none)", s)
	}
}

// Config controls how configurations are generated.
type Config struct {
	// Type is the debugger type, e.g. cppdbg or lldb.
	Type string
	// Request is the request kind, launch or attach.
	Request string
	// Cwd is the working directory, interpreted relative to CwdRelativeTo.
	Cwd           string
	CwdRelativeTo CwdRelativeTo

	// AddExecPathToName appends the executable path to each configuration name.
	AddExecPathToName bool
	// ConfigurationsOnly renders the bare configurations array.
	ConfigurationsOnly bool
	StopAtEntry        bool
	// PrettyPrinting adds the gdb pretty-printing setup command.
	PrettyPrinting bool
}

// DefaultConfig returns the default launch configuration settings.
func DefaultConfig() Config {
	return Config{
		Type:          "cppdbg",
		Request:       "launch",
		Cwd:           ".",
		CwdRelativeTo: CwdRelativeToExecutable,
	}
}

// File is a launch.json document.
type File struct {
	Version        string          `json:"version"`
	Configurations []Configuration `json:"configurations"`
}

// Configuration is one debugger launch configuration.
type Configuration struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Request       string         `json:"request"`
	Program       string         `json:"program"`
	Args          []string       `json:"args"`
	Cwd           string         `json:"cwd"`
	StopAtEntry   bool           `json:"stopAtEntry,omitempty"`
	SetupCommands []SetupCommand `json:"setupCommands,omitempty"`
}

// SetupCommand is a debugger command run before launch.
type SetupCommand struct {
	Text           string `json:"text"`
	Description    string `json:"description"`
	IgnoreFailures bool   `json:"ignoreFailures"`
}

var prettyPrinting = SetupCommand{
	Text:        "-enable-pretty-printing",
	Description: "Enable pretty printing",
}

// Configurations builds one configuration per test.
func Configurations(tests []catalog.Test, cfg Config) ([]Configuration, error) {
	configs := make([]Configuration, 0, len(tests))
	for _, test := range tests {
		cwd, err := workingDir(test, cfg)
		if err != nil {
			return nil, err
		}

		name := test.Name
		if cfg.AddExecPathToName {
			name = fmt.Sprintf("%s:%s", test.Name, test.Executable.Path)
		}

		config := Configuration{
			Name:        name,
			Type:        cfg.Type,
			Request:     cfg.Request,
			Program:     test.Executable.Path,
			Args:        append([]string{}, test.Arguments...),
			Cwd:         cwd,
			StopAtEntry: cfg.StopAtEntry,
		}
		if cfg.PrettyPrinting {
			config.SetupCommands = []SetupCommand{prettyPrinting}
		}
		configs = append(configs, config)
	}
	return configs, nil
}

// Write renders tests as indented JSON: a launch.json document, or only its configurations
// array when cfg.ConfigurationsOnly is set.
func Write(w io.Writer, tests []catalog.Test, cfg Config) error {
	configs, err := Configurations(tests, cfg)
	if err != nil {
		return err
	}

	var doc any = File{Version: Version, Configurations: configs}
	if cfg.ConfigurationsOnly {
		doc = configs
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode launch configurations: %w", err)
	}
	return nil
}

func workingDir(test catalog.Test, cfg Config) (string, error) {
	var dir string
	switch cfg.CwdRelativeTo {
	case CwdRelativeToExecutable, "":
		dir = filepath.Join(filepath.Dir(test.Executable.Path), cfg.Cwd)
	case CwdRelativeToCppFile:
		base := test.Executable.Path
		if test.HasLocation() {
			base = test.File
		}
		dir = filepath.Join(filepath.Dir(base), cfg.Cwd)
	case CwdRelativeToNone:
		dir = cfg.Cwd
	default:
		return "", fmt.Errorf("invalid cwd base %q", cfg.CwdRelativeTo)
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory for %s: %w", test.Name, err)
	}
	return filepath.Abs(resolved)
}
