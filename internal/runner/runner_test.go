package runner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/runner"
	"github.com/ctrun/ctrun/internal/testutil"
)

// fakeSuite is a Catch2-style test binary: it runs the test named by its first argument and
// fails every test whose name starts with "fail".
const fakeSuite = `
echo "running $1"
echo "$@" >> "$0.calls"
case "$1" in
fail*) exit 1 ;;
esac
exit 0
`

var progressLine = regexp.MustCompile(`^\[(\d+)/(\d+)\] (\S+) \.* (PASSED|FAILED)$`)

func newRunner(t *testing.T, out *bytes.Buffer, mutate func(*runner.Config)) *runner.Runner {
	t.Helper()
	cfg := runner.DefaultConfig()
	cfg.Output = out
	cfg.Logger = testutil.NewTestLoggerWithOutput(t)
	cfg.Jobs = 4
	if mutate != nil {
		mutate(&cfg)
	}
	return runner.New(cfg)
}

func makeTests(exe catalog.Executable, names ...string) []catalog.Test {
	tests := make([]catalog.Test, 0, len(names))
	for _, name := range names {
		tests = append(tests, catalog.Test{
			ID:         catalog.TestID(exe.Path, name),
			Name:       name,
			Executable: exe,
			Arguments:  []string{name},
		})
	}
	return tests
}

func TestRunAll_Aggregation(t *testing.T) {
	path := testutil.WriteScript(t, t.TempDir(), "suite", fakeSuite)
	exe := catalog.Executable{Path: path, Type: catalog.Catch2}
	tests := makeTests(exe, "ok-1", "fail-a", "ok-2", "fail-b", "ok-3")

	var out bytes.Buffer
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	summary, err := newRunner(t, &out, nil).RunAll(ctx, tests)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Passed)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, "3 tests passed, 2 tests failed", summary.String())
	require.Len(t, summary.Results, 5)
	for i, result := range summary.Results {
		assert.Equal(t, tests[i].Name, result.Test.Name)
		assert.Equal(t, !strings.HasPrefix(result.Test.Name, "fail"), result.Passed)
	}

	var sequence []int
	status := map[string]string{}
	for _, line := range strings.Split(out.String(), "\n") {
		m := progressLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		k, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		sequence = append(sequence, k)
		assert.Equal(t, "5", m[2])
		status[m[3]] = m[4]
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, sequence)
	assert.Equal(t, map[string]string{
		"ok-1": "PASSED", "ok-2": "PASSED", "ok-3": "PASSED",
		"fail-a": "FAILED", "fail-b": "FAILED",
	}, status)

	// Failing output is shown, passing output is not.
	assert.Contains(t, out.String(), "running fail-a\n")
	assert.Contains(t, out.String(), "running fail-b\n")
	assert.NotContains(t, out.String(), "running ok-1")

	assert.True(t, strings.HasSuffix(out.String(), "3 tests passed, 2 tests failed\n"))
}

func TestRunAll_ProgressLineWidth(t *testing.T) {
	path := testutil.WriteScript(t, t.TempDir(), "suite", fakeSuite)
	exe := catalog.Executable{Path: path, Type: catalog.Catch2}
	longName := "ok-" + strings.Repeat("x", 150)

	var out bytes.Buffer
	_, err := newRunner(t, &out, nil).RunAll(context.Background(), makeTests(exe, "ok-short", longName))
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		if strings.Contains(line, longName) {
			// No room for dots.
			assert.True(t, strings.HasSuffix(line, "] "+longName+"  PASSED"), line)
			continue
		}
		assert.Len(t, line, runner.LineWidth)
	}
}

func TestRunAll_ColorArguments(t *testing.T) {
	tests := []struct {
		name  string
		typ   catalog.ExecutableType
		color bool
		want  string
	}{
		{name: "gtest colour", typ: catalog.GoogleTest, color: true, want: "ok --gtest_color=yes"},
		{name: "gtest plain", typ: catalog.GoogleTest, color: false, want: "ok --gtest_color=no"},
		{name: "catch2 colour", typ: catalog.Catch2, color: true, want: "ok --colour-mode=ansi"},
		{name: "catch2 plain", typ: catalog.Catch2, color: false, want: "ok --colour-mode=none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteScript(t, t.TempDir(), "suite", fakeSuite)
			exe := catalog.Executable{Path: path, Type: tt.typ}

			var out bytes.Buffer
			_, err := newRunner(t, &out, func(c *runner.Config) { c.Color = tt.color }).
				RunAll(context.Background(), makeTests(exe, "ok"))
			require.NoError(t, err)

			calls, err := os.ReadFile(path + ".calls")
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(string(calls)))

			if tt.color {
				assert.Contains(t, out.String(), "\x1b[")
			} else {
				assert.NotContains(t, out.String(), "\x1b[")
			}
		})
	}
}

func TestRunAll_SpawnFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteScript(t, dir, "suite", fakeSuite)
	missing := catalog.Executable{Path: filepath.Join(dir, "missing"), Type: catalog.GoogleTest}
	exe := catalog.Executable{Path: path, Type: catalog.Catch2}

	tests := append(makeTests(missing, "gone"), makeTests(exe, "ok-1", "ok-2")...)

	var out bytes.Buffer
	summary, err := newRunner(t, &out, func(c *runner.Config) { c.Jobs = 1 }).
		RunAll(context.Background(), tests)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Zero(t, summary.Total())
	_, statErr := os.Stat(path + ".calls")
	assert.True(t, os.IsNotExist(statErr), "no test should start after a spawn failure")
	assert.NotContains(t, out.String(), "passed")
}

func TestRunAll_Empty(t *testing.T) {
	var out bytes.Buffer
	summary, err := newRunner(t, &out, nil).RunAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
	assert.Equal(t, "0 tests passed, 0 tests failed\n", out.String())
}

func TestSummary_String(t *testing.T) {
	tests := []struct {
		summary runner.Summary
		want    string
	}{
		{runner.Summary{Passed: 1, Failed: 0}, "1 test passed, 0 tests failed"},
		{runner.Summary{Passed: 0, Failed: 1}, "0 tests passed, 1 test failed"},
		{runner.Summary{Passed: 12, Failed: 3}, "12 tests passed, 3 tests failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.summary.String())
	}
	assert.True(t, runner.Summary{Passed: 2}.OK())
	assert.False(t, runner.Summary{Passed: 2, Failed: 1}.OK())
}
