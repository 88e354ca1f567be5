// Package runner executes catalog tests and reports their progress.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/retry"
)

// LineWidth is the column at which progress statuses end.
const LineWidth = 120

// Config holds runner configuration.
type Config struct {
	// Jobs bounds concurrently running tests. Zero means GOMAXPROCS.
	Jobs int

	// Color enables ANSI colours in progress lines and in the tests' own output.
	Color bool

	// Output receives progress lines and the summary. Nil means stdout.
	Output io.Writer

	Logger zerolog.Logger
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{
		Output: os.Stdout,
		Logger: zerolog.Nop(),
	}
}

// Result is the outcome of one test.
type Result struct {
	Test     catalog.Test
	Passed   bool
	ExitCode int
	// Output is the captured standard output of the test process.
	Output   []byte
	Duration time.Duration
}

// Runner runs tests as child processes.
type Runner struct {
	config Config
	out    io.Writer
	logger zerolog.Logger

	passed *color.Color
	failed *color.Color

	mu      sync.Mutex
	printed int
}

// New creates a runner with the given configuration.
func New(config Config) *Runner {
	if config.Jobs <= 0 {
		config.Jobs = runtime.GOMAXPROCS(0)
	}
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	passed := color.New(color.FgGreen, color.Bold)
	failed := color.New(color.FgRed, color.Bold)
	if config.Color {
		passed.EnableColor()
		failed.EnableColor()
	} else {
		passed.DisableColor()
		failed.DisableColor()
	}

	return &Runner{
		config: config,
		out:    out,
		logger: config.Logger.With().Str("component", "runner").Logger(),
		passed: passed,
		failed: failed,
	}
}

// RunAll runs every test concurrently, printing a progress line as each one finishes and a
// summary once all are done. A test that exits non-zero is a failure, not an error. A test that
// cannot be started is fatal: no further tests are started and the error is returned once the
// running ones finish. Running children are never killed.
func (r *Runner) RunAll(ctx context.Context, tests []catalog.Test) (Summary, error) {
	r.mu.Lock()
	r.printed = 0
	r.mu.Unlock()

	total := len(tests)
	results := make([]*Result, total)
	var passed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Jobs)

	for i, test := range tests {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			result, err := r.run(ctx, test)
			if err != nil {
				return err
			}
			if result.Passed {
				passed.Add(1)
			}
			results[i] = &result
			r.report(result, total)
			return nil
		})
	}
	err := g.Wait()

	summary := Summary{Passed: int(passed.Load())}
	for _, result := range results {
		if result != nil {
			summary.Results = append(summary.Results, *result)
		}
	}
	summary.Failed = len(summary.Results) - summary.Passed

	if err != nil {
		return summary, err
	}
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}

	fmt.Fprintln(r.out, summary.String())
	return summary, nil
}

func (r *Runner) run(ctx context.Context, test catalog.Test) (Result, error) {
	args := append(append([]string(nil), test.Arguments...), colorArgs(test.Executable.Type, r.config.Color)...)

	var (
		stdout strings.Builder
		start  time.Time
	)

	r.logger.Debug().Str("test", test.Name).Strs("args", args).Msg("Starting test")

	// ctx only bounds the wait between start attempts. A started test always runs to completion.
	err := retry.Do(ctx, retry.Launch, func() error {
		stdout.Reset()

		// #nosec G204 -- running discovered test binaries is the point.
		cmd := exec.Command(test.Executable.Path, args...)
		cmd.Stdout = &stdout
		start = time.Now()
		return cmd.Run()
	}, retry.TextFileBusy)
	result := Result{
		Test:     test,
		Output:   []byte(stdout.String()),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("failed to start %s: %w", test.Name, err)
		}
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.Passed = true
	return result, nil
}

// report prints the progress line for result. The sequence number and the write happen under
// one lock so numbers appear in print order.
func (r *Runner) report(result Result, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printed++
	prefix := fmt.Sprintf("[%d/%d] %s ", r.printed, total, result.Test.Name)

	status, paint := "PASSED", r.passed
	if !result.Passed {
		status, paint = "FAILED", r.failed
	}

	dots := max(LineWidth-len(prefix)-len(status)-1, 0)
	fmt.Fprintf(r.out, "%s%s %s\n", prefix, strings.Repeat(".", dots), paint.Sprint(status))

	if !result.Passed && len(result.Output) > 0 {
		_, _ = r.out.Write(result.Output)
		if result.Output[len(result.Output)-1] != '\n' {
			_, _ = io.WriteString(r.out, "\n")
		}
	}
}

func colorArgs(typ catalog.ExecutableType, enabled bool) []string {
	switch typ {
	case catalog.GoogleTest:
		if enabled {
			return []string{"--gtest_color=yes"}
		}
		return []string{"--gtest_color=no"}
	case catalog.Catch2:
		if enabled {
			return []string{"--colour-mode=ansi"}
		}
		return []string{"--colour-mode=none"}
	default:
		return nil
	}
}
