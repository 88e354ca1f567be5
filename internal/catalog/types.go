// Package catalog defines the test catalog and enumerates the tests of classified executables.
package catalog

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// ExecutableType is the test framework family an executable was built with.
type ExecutableType int

const (
	// GoogleTest covers GoogleTest and anything exposing its --gtest_* introspection flags.
	GoogleTest ExecutableType = iota + 1
	// Catch2 covers Catch2 v3 executables answering --libidentify.
	Catch2
)

// AllExecutableTypes lists every supported framework family.
var AllExecutableTypes = []ExecutableType{GoogleTest, Catch2}

// String returns the name used in catalog output.
func (t ExecutableType) String() string {
	switch t {
	case GoogleTest:
		return "Gtest"
	case Catch2:
		return "Catch2"
	default:
		return fmt.Sprintf("ExecutableType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ExecutableType) MarshalText() ([]byte, error) {
	switch t {
	case GoogleTest, Catch2:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown executable type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ExecutableType) UnmarshalText(text []byte) error {
	parsed, err := ParseExecutableType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseExecutableType accepts "gtest", "googletest" or "catch2", case-insensitively.
func ParseExecutableType(s string) (ExecutableType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gtest", "googletest":
		return GoogleTest, nil
	case "catch2":
		return Catch2, nil
	default:
		return 0, fmt.Errorf("unknown test framework %q (expected gtest or catch2)", s)
	}
}

// Executable is a discovered test binary. It is immutable once classified.
type Executable struct {
	Path string `json:"path"`
	// Created is the file's creation time in nanoseconds since the epoch. It is informational
	// only.
	Created int64          `json:"created"`
	Type    ExecutableType `json:"executable_type"`
}

// Test is one runnable entry of the catalog.
type Test struct {
	// ID is a stable digest of the executable path and test name.
	ID   string `json:"id"`
	Name string `json:"name"`
	// File and Line are the resolved source location, empty when it could not be resolved.
	File       string     `json:"file,omitempty"`
	Line       int        `json:"line,omitempty"`
	Executable Executable `json:"executable"`
	// Arguments select exactly this test when passed to Executable.Path.
	Arguments []string `json:"arguments"`
}

// HasLocation reports whether the test carries a resolved source location.
func (t Test) HasLocation() bool {
	return t.File != ""
}

func newTest(exe Executable, name string, args []string) Test {
	return Test{
		ID:         TestID(exe.Path, name),
		Name:       name,
		Executable: exe,
		Arguments:  args,
	}
}

// TestID derives the stable identifier of the test called name inside the executable at path.
func TestID(path, name string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(path+"\x00"+name))
}
