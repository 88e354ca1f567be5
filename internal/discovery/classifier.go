// Package discovery finds test executables on disk and classifies them by framework.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/elf"
	ctrerrors "github.com/ctrun/ctrun/internal/errors"
)

// Symbol substrings that identify a framework.
const (
	// GoogleTestMarker is part of the mangled name of testing::InitGoogleTest.
	GoogleTestMarker = "InitGoogleTest"
	// Catch2Marker is the Itanium-mangled Catch namespace prefix.
	Catch2Marker = "N5Catch"
)

var (
	// ErrNotATestExecutable is returned by Validate for binaries that match no enabled framework.
	ErrNotATestExecutable = errors.New("not a test executable")
	// ErrTestDirNotFound is returned when the test directory does not exist.
	ErrTestDirNotFound = errors.New("test directory not found")
)

// Config holds discovery configuration.
type Config struct {
	// Frameworks lists the enabled framework families. Empty enables all of them.
	Frameworks []catalog.ExecutableType

	// ProbeCatch2 runs --libidentify on binaries that carry no framework marker.
	ProbeCatch2 bool

	// Jobs is the number of classification workers. Zero means GOMAXPROCS.
	Jobs int

	Logger zerolog.Logger
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		Frameworks: catalog.AllExecutableTypes,
		Logger:     zerolog.Nop(),
	}
}

// Classifier decides whether a binary is a test executable and which framework it uses.
type Classifier struct {
	googleTest  bool
	catch2      bool
	probeCatch2 bool
	jobs        int
	logger      zerolog.Logger
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(config Config) *Classifier {
	frameworks := config.Frameworks
	if len(frameworks) == 0 {
		frameworks = catalog.AllExecutableTypes
	}
	jobs := config.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	return &Classifier{
		googleTest:  slices.Contains(frameworks, catalog.GoogleTest),
		catch2:      slices.Contains(frameworks, catalog.Catch2),
		probeCatch2: config.ProbeCatch2,
		jobs:        jobs,
		logger:      config.Logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify inspects the binary at path. A nil executable with a nil error means the file is a
// valid binary that is not a test executable.
func (c *Classifier) Classify(ctx context.Context, path string) (*catalog.Executable, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer ctrerrors.DeferClose(c.logger, f, "failed to close binary")

	if !f.IsExecutableOrShared() {
		return nil, nil
	}

	typ, found, err := c.fromSymbols(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !found && c.catch2 && c.probeCatch2 {
		ok, err := catalog.ProbeCatch2(ctx, path)
		if err != nil {
			return nil, err
		}
		typ, found = catalog.Catch2, ok
	}

	if !found {
		return nil, nil
	}

	c.logger.Debug().Str("path", path).Stringer("type", typ).Msg("Classified test executable")

	return &catalog.Executable{
		Path:    path,
		Created: createdAt(path),
		Type:    typ,
	}, nil
}

// fromSymbols scans the symbol table for framework markers. found is false when the binary has
// no symbol table or no marker.
func (c *Classifier) fromSymbols(f *elf.File) (typ catalog.ExecutableType, found bool, err error) {
	headers, err := f.SectionHeaders()
	if err != nil {
		return 0, false, err
	}

	symtabHeader, ok := headers.SymbolTable()
	if !ok {
		return 0, false, nil
	}

	strtabHeader, ok := headers.Get(symtabHeader.Link())
	if !ok {
		return 0, false, fmt.Errorf("%w: symbol table links to section %d of %d",
			elf.ErrMalformedBinary, symtabHeader.Link(), len(headers))
	}

	section, err := f.Section(symtabHeader)
	if err != nil {
		return 0, false, err
	}
	symbols, ok := section.(elf.Symbols)
	if !ok {
		return 0, false, fmt.Errorf("%w: symbol table section is not a symbol table", elf.ErrMalformedBinary)
	}

	section, err = f.Section(strtabHeader)
	if err != nil {
		return 0, false, err
	}
	strtab, ok := section.(elf.StringTable)
	if !ok {
		return 0, false, fmt.Errorf("%w: symbol table links to a non-string section", elf.ErrMalformedBinary)
	}

	// A GoogleTest marker anywhere wins over Catch2 symbols seen earlier.
	catch2 := false
	for _, sym := range symbols {
		name, ok := strtab.Name(sym)
		if !ok || name == "" {
			continue
		}
		if c.googleTest && strings.Contains(name, GoogleTestMarker) {
			return catalog.GoogleTest, true, nil
		}
		if c.catch2 && !catch2 && strings.Contains(name, Catch2Marker) {
			catch2 = true
		}
	}

	if catch2 {
		return catalog.Catch2, true, nil
	}
	return 0, false, nil
}
