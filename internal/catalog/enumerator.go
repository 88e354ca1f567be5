package catalog

import (
	"context"
	"fmt"
	"regexp"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds enumeration options.
type Config struct {
	// ExecutablesOnly skips introspection and yields one Test per executable.
	ExecutablesOnly bool

	// GTestExtraArgs are appended to every GoogleTest invocation.
	GTestExtraArgs []string

	// Catch2ExtraArgs are passed to Catch2 executables in executables-only mode.
	Catch2ExtraArgs []string

	// Filter keeps only tests whose name it matches. Nil keeps everything.
	Filter *regexp.Regexp

	// Jobs bounds concurrent introspection runs in EnumerateAll. Zero means GOMAXPROCS.
	Jobs int

	Logger zerolog.Logger
}

// DefaultConfig returns the default enumeration configuration.
func DefaultConfig() Config {
	return Config{
		Logger: zerolog.Nop(),
	}
}

// Enumerator lists the tests contained in classified executables.
type Enumerator struct {
	config Config
	logger zerolog.Logger
}

// NewEnumerator creates an enumerator with the given configuration.
func NewEnumerator(config Config) *Enumerator {
	if config.Jobs <= 0 {
		config.Jobs = runtime.GOMAXPROCS(0)
	}
	return &Enumerator{
		config: config,
		logger: config.Logger.With().Str("component", "enumerator").Logger(),
	}
}

// Enumerate lists the tests of a single executable.
func (e *Enumerator) Enumerate(ctx context.Context, exe Executable) ([]Test, error) {
	if e.config.ExecutablesOnly {
		return []Test{e.wholeExecutable(exe)}, nil
	}

	switch exe.Type {
	case GoogleTest:
		return e.enumerateGTest(ctx, exe)
	case Catch2:
		return e.enumerateCatch2(ctx, exe)
	default:
		return nil, fmt.Errorf("enumerate %s: unsupported executable type %s", exe.Path, exe.Type)
	}
}

// EnumerateAll lists the tests of every executable. Executables that fail to enumerate are
// logged and left out. The result keeps the order of exes.
func (e *Enumerator) EnumerateAll(ctx context.Context, exes []Executable) []Test {
	perExe := make([][]Test, len(exes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Jobs)

	for i, exe := range exes {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			tests, err := e.Enumerate(ctx, exe)
			if err != nil {
				e.logger.Warn().Err(err).Str("path", exe.Path).Msg("Failed to enumerate tests")
				return nil
			}
			perExe[i] = tests
			return nil
		})
	}
	_ = g.Wait()

	var total int
	for _, tests := range perExe {
		total += len(tests)
	}
	all := make([]Test, 0, total)
	for _, tests := range perExe {
		all = append(all, tests...)
	}

	e.logger.Debug().
		Int("executables", len(exes)).
		Int("tests", len(all)).
		Msg("Enumeration complete")

	return all
}

func (e *Enumerator) wholeExecutable(exe Executable) Test {
	var extra []string
	switch exe.Type {
	case GoogleTest:
		extra = e.config.GTestExtraArgs
	case Catch2:
		extra = e.config.Catch2ExtraArgs
	}
	return newTest(exe, exe.Path, append([]string{}, extra...))
}

func (e *Enumerator) keep(name string) bool {
	return e.config.Filter == nil || e.config.Filter.MatchString(name)
}

// located fills in the source location of t when the declared file resolves on disk.
func located(t Test, declared string, line int) Test {
	if file, ok := ResolveSourceFile(t.Executable.Path, declared); ok {
		t.File = file
		t.Line = line
	}
	return t
}
